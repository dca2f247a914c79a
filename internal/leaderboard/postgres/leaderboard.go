package postgres

import (
	"gorm.io/gorm"

	"github.com/careertodo/platform/internal/leaderboard"
)

// overallExpr derives the overall score from the five stored dimensions.
const overallExpr = "(rs.execution + rs.collaboration + rs.leadership + rs.ethics + rs.reliability) / 5.0"

// EntryRepository implements the leaderboard.Repository interface using GORM
type EntryRepository struct {
	db *gorm.DB
}

// NewEntryRepository creates a new leaderboard entry repository
func NewEntryRepository(db *gorm.DB) leaderboard.Repository {
	return &EntryRepository{db: db}
}

// StudentEntries returns every active student with their derived overall score.
// Students with no ratings yet surface with a zero score.
func (r *EntryRepository) StudentEntries() ([]leaderboard.Entry, error) {
	var entries []leaderboard.Entry
	err := r.db.Raw(`
		SELECT u.id AS entity_id,
		       u.name AS name,
		       COALESCE(`+overallExpr+`, 0) AS score
		FROM users u
		LEFT JOIN reputation_scores rs ON rs.user_id = u.id
		WHERE u.account_type = ? AND u.is_active
	`, "student").Scan(&entries).Error
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return entries, err
}

// UniversityEntries scores each university by the mean overall of its
// enrolled students. Universities with no rated students score zero.
func (r *EntryRepository) UniversityEntries() ([]leaderboard.Entry, error) {
	var entries []leaderboard.Entry
	err := r.db.Raw(`
		SELECT uni.id AS entity_id,
		       uni.name AS name,
		       COALESCE(AVG(`+overallExpr+`), 0) AS score
		FROM users uni
		LEFT JOIN users s ON s.university_id = uni.id AND s.account_type = ? AND s.is_active
		LEFT JOIN reputation_scores rs ON rs.user_id = s.id
		WHERE uni.account_type = ? AND uni.is_active
		GROUP BY uni.id, uni.name
	`, "student", "university").Scan(&entries).Error
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return entries, err
}

// ProjectEntries scores each active project by the mean overall of its
// members' reputations.
func (r *EntryRepository) ProjectEntries() ([]leaderboard.Entry, error) {
	var entries []leaderboard.Entry
	err := r.db.Raw(`
		SELECT p.id AS entity_id,
		       p.name AS name,
		       COALESCE(AVG(`+overallExpr+`), 0) AS score
		FROM projects p
		LEFT JOIN project_members pm ON pm.project_id = p.id
		LEFT JOIN reputation_scores rs ON rs.user_id = pm.user_id
		WHERE p.status = ?
		GROUP BY p.id, p.name
	`, "active").Scan(&entries).Error
	if entries == nil {
		entries = []leaderboard.Entry{}
	}
	return entries, err
}
