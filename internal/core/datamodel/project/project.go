package project

import "time"

// Project is a student venture run on the platform. Its leaderboard
// score is the mean reputation of its members, derived at query time.
type Project struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	UniversityID *int64    `gorm:"column:university_id"`
	OwnerID      int64     `gorm:"column:owner_id;not null"`
	Status       string    `gorm:"column:status;not null;default:active"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

// Member links a user to a project with the role they hold in it.
type Member struct {
	ID        int64     `gorm:"primaryKey"`
	ProjectID int64     `gorm:"column:project_id;not null;uniqueIndex:idx_project_user"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_project_user"`
	Role      string    `gorm:"column:role;not null;default:contributor"`
	JoinedAt  time.Time `gorm:"column:joined_at;default:now()"`
}

func (Project) TableName() string { return "projects" }
func (Member) TableName() string  { return "project_members" }
