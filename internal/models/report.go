package models

import "time"

// AnimalReport groups the records printed for one animal in a report.
type AnimalReport struct {
	Animal    *Animal
	Species   *Species
	Behaviors []*Behavior
	BodyExams []*BodyExam
}

type ReportData struct {
	OrganizationName string
	Start            time.Time
	End              time.Time
	Animals          []AnimalReport
	// StaffNames resolves recorder ids; missing entries print as "Unknown".
	StaffNames  map[string]string
	GeneratedAt time.Time
}

type StoredReport struct {
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
	Size       int64     `json:"size"`
}
