package verification

import "time"

// Request is the persisted verification access request. ExpiresAt stays null
// until the request is approved.
type Request struct {
	ID                 int64      `gorm:"primaryKey"`
	RequesterID        int64      `gorm:"column:requester_id;not null;index"`
	SubjectID          int64      `gorm:"column:subject_id;not null;index"`
	Purpose            string     `gorm:"column:purpose;not null"`
	AccessDurationDays int        `gorm:"column:access_duration_days;not null"`
	Status             string     `gorm:"column:status;not null;default:pending;index"`
	ApproverID         *int64     `gorm:"column:approver_id"`
	RejectReason       *string    `gorm:"column:reject_reason"`
	ExpiresAt          *time.Time `gorm:"column:expires_at"`
	ProcessedAt        *time.Time `gorm:"column:processed_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;default:now()"`
}

func (Request) TableName() string { return "verification_requests" }
