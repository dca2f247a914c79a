package reputation

import "time"

// Score is the persisted five-dimension reputation record, one row per user.
// The overall value is never stored; it is derived from the dimensions on read.
type Score struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;uniqueIndex;not null"`
	Execution     float64   `gorm:"column:execution;not null;default:0"`
	Collaboration float64   `gorm:"column:collaboration;not null;default:0"`
	Leadership    float64   `gorm:"column:leadership;not null;default:0"`
	Ethics        float64   `gorm:"column:ethics;not null;default:0"`
	Reliability   float64   `gorm:"column:reliability;not null;default:0"`
	RatingCount   int64     `gorm:"column:rating_count;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt     time.Time `gorm:"column:updated_at;default:now()"`
}

func (Score) TableName() string { return "reputation_scores" }
