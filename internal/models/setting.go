package models

// Setting value types. The settings table stores everything as text and
// the type column drives decoding on read.
const (
	SettingTypeString = "string"
	SettingTypeNumber = "number"
	SettingTypeBool   = "boolean"
	SettingTypeJSON   = "json"
)

// Setting is one typed key-value pair backing a feature toggle.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// Well-known setting keys.
const (
	SettingUpdateTrackingEnabled  = "updateTrackingEnabled"
	SettingUpdateCheckInterval    = "updateCheckInterval" // minutes
	SettingReminderEnabled        = "readingRemindersEnabled"
	SettingReminderInterval       = "reminderInterval" // hours
	SettingBackgroundTasksEnabled = "backgroundTasksEnabled"
	SettingAutoDownload           = "autoDownload"
	SettingMaxConcurrentDownloads = "maxConcurrentDownloads"
	SettingLastUpdateCheck        = "lastUpdateCheck"    // unix ms
	SettingLastReadingReminder    = "lastReadingReminder" // unix ms
)
