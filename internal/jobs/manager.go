package jobs

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// Task is one runnable background job.
type Task func(ctx context.Context) error

type JobStatus struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"` // "idle", "running", "success", "failed"
	Message   string    `json:"message"`
	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`
}

// JobManager runs registered jobs at most once at a time per job, whether
// triggered by the scheduler, a lifecycle event, or the API.
type JobManager struct {
	mu      sync.Mutex
	jobs    map[string]Task
	status  map[string]*JobStatus
	running map[string]bool
}

func NewManager() *JobManager {
	return &JobManager{
		jobs:    make(map[string]Task),
		status:  make(map[string]*JobStatus),
		running: make(map[string]bool),
	}
}

func (jm *JobManager) Register(name string, task Task) {
	jm.mu.Lock()
	defer jm.mu.Unlock()
	jm.jobs[name] = task
	jm.status[name] = &JobStatus{Name: name, Status: "idle"}
}

// RunJob starts a job in the background. A job already running is not
// started again.
func (jm *JobManager) RunJob(ctx context.Context, name string) error {
	jm.mu.Lock()
	task, ok := jm.jobs[name]
	if !ok {
		jm.mu.Unlock()
		return fmt.Errorf("job '%s' not found", name)
	}
	if jm.running[name] {
		jm.mu.Unlock()
		return fmt.Errorf("job '%s' is already running", name)
	}
	jm.running[name] = true
	status := jm.status[name]
	status.Status = "running"
	status.StartTime = time.Now()
	status.Message = "Job started..."
	jm.mu.Unlock()

	log.Printf("Starting job: %s", name)
	go func() {
		var taskErr error
		defer func() {
			if r := recover(); r != nil {
				log.Printf("Job '%s' panicked: %v", name, r)
				taskErr = fmt.Errorf("job panicked: %v", r)
			}
			jm.mu.Lock()
			status.EndTime = time.Now()
			if taskErr != nil {
				status.Status = "failed"
				status.Message = taskErr.Error()
			} else {
				status.Status = "success"
				status.Message = "Job completed successfully."
			}
			jm.running[name] = false
			jm.mu.Unlock()
			log.Printf("Finished job: %s", name)
		}()
		taskErr = task(ctx)
	}()
	return nil
}

func (jm *JobManager) GetStatus() []*JobStatus {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	statuses := make([]*JobStatus, 0, len(jm.status))
	for _, s := range jm.status {
		copied := *s
		statuses = append(statuses, &copied)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
