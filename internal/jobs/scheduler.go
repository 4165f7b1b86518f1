package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Job names. The lifecycle handlers and the API trigger jobs by these
// names too.
const (
	JobUpdateCheck     = "update-check"
	JobReadingReminder = "reading-reminder"
	JobMaintenance     = "maintenance"
)

// Schedule wires the registered jobs onto a gocron scheduler. Intervals
// of zero disable the corresponding job.
func Schedule(jm *JobManager, checkIntervalMin, reminderIntervalHr int) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	scheduleJob(s, jm, JobUpdateCheck, checkIntervalMin, "minutes")
	scheduleJob(s, jm, JobReadingReminder, reminderIntervalHr, "hours")
	scheduleJob(s, jm, JobMaintenance, 24, "hours")

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func scheduleJob(s *gocron.Scheduler, jm *JobManager, name string, interval int, unit string) {
	if interval == 0 {
		log.Printf("Interval for '%s' is 0, scheduled runs are disabled.", name)
		return
	}
	log.Printf("Scheduling job: '%s' to run every %d %s.", name, interval, unit)

	sched := s.Every(interval)
	if unit == "hours" {
		sched = sched.Hours()
	} else {
		sched = sched.Minutes()
	}
	_, err := sched.Do(func() {
		log.Println("Scheduler is triggering job:", name)
		if err := jm.RunJob(context.Background(), name); err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", name, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", name, err)
	}
}
