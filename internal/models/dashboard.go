package models

import (
	"time"

	"github.com/google/uuid"
)

type DashboardStats struct {
	OrganizationID uuid.UUID  `json:"organization_id"`
	Animals        int64      `json:"animals"`
	Species        int64      `json:"species"`
	Staff          int64      `json:"staff"`
	Behaviors      int64      `json:"behaviors"`
	BodyExams      int64      `json:"body_exams"`
	Start          *time.Time `json:"start,omitempty"`
	End            *time.Time `json:"end,omitempty"`
	GeneratedAt    time.Time  `json:"generated_at"`
}

const (
	ActivityAll       = "all"
	ActivityBehaviors = "behaviors"
	ActivityExams     = "exams"

	ActivityTypeBehavior = "behavior"
	ActivityTypeBodyExam = "bodyExam"
)

// ActivityItem is one row of the merged recent activity feed.
type ActivityItem struct {
	Type      string    `json:"type"`
	ID        uuid.UUID `json:"id"`
	AnimalID  uuid.UUID `json:"animal_id"`
	StaffID   uuid.UUID `json:"staff_id"`
	CreatedAt time.Time `json:"created_at"`
	Behavior  *Behavior `json:"behavior,omitempty"`
	BodyExam  *BodyExam `json:"body_exam,omitempty"`
}

type ActivityFeed struct {
	Items []ActivityItem `json:"items"`
	// NextCursor resumes the feed after the last item; nil on the final page.
	NextCursor *string `json:"next_cursor"`
}
