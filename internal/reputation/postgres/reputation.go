package postgres

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	datamodel "github.com/careertodo/platform/internal/core/datamodel/reputation"
	"github.com/careertodo/platform/internal/reputation"
)

// ScoreRepository implements the reputation.Repository interface using GORM
type ScoreRepository struct {
	db *gorm.DB
}

// NewScoreRepository creates a new reputation score repository
func NewScoreRepository(db *gorm.DB) reputation.Repository {
	return &ScoreRepository{db: db}
}

// GetByUserID retrieves the score row for a user
func (r *ScoreRepository) GetByUserID(userID int64) (*reputation.Score, error) {
	var row datamodel.Score
	err := r.db.Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, reputation.ErrScoreNotFound
		}
		return nil, err
	}
	return toDomain(&row), nil
}

// Upsert writes the running averages, guarded on the rating count the
// caller read. Zero affected rows means another rating landed in
// between and the caller must reload and reapply. The row is inserted
// on the first rating for a user.
func (r *ScoreRepository) Upsert(score *reputation.Score, priorCount int64) error {
	result := r.db.Model(&datamodel.Score{}).
		Where("user_id = ? AND rating_count = ?", score.UserID, priorCount).
		Updates(map[string]interface{}{
			"execution":     score.Dimensions.Execution,
			"collaboration": score.Dimensions.Collaboration,
			"leadership":    score.Dimensions.Leadership,
			"ethics":        score.Dimensions.Ethics,
			"reliability":   score.Dimensions.Reliability,
			"rating_count":  score.RatingCount,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if priorCount == 0 {
		row := datamodel.Score{
			UserID:        score.UserID,
			Execution:     score.Dimensions.Execution,
			Collaboration: score.Dimensions.Collaboration,
			Leadership:    score.Dimensions.Leadership,
			Ethics:        score.Dimensions.Ethics,
			Reliability:   score.Dimensions.Reliability,
			RatingCount:   score.RatingCount,
			UpdatedAt:     time.Now(),
		}
		result = r.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&row)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
	}

	return reputation.ErrStaleScore
}

func toDomain(row *datamodel.Score) *reputation.Score {
	return &reputation.Score{
		UserID: row.UserID,
		Dimensions: reputation.Dimensions{
			Execution:     row.Execution,
			Collaboration: row.Collaboration,
			Leadership:    row.Leadership,
			Ethics:        row.Ethics,
			Reliability:   row.Reliability,
		},
		RatingCount: row.RatingCount,
		UpdatedAt:   row.UpdatedAt,
	}
}
