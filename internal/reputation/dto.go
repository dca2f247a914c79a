package reputation

import (
	internal_errors "github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/core/common/validation"
)

// SubmitRatingDTO carries one peer rating emitted when a project wraps up.
type SubmitRatingDTO struct {
	ProjectID     int64   `json:"project_id"`
	Execution     float64 `json:"execution"`
	Collaboration float64 `json:"collaboration"`
	Leadership    float64 `json:"leadership"`
	Ethics        float64 `json:"ethics"`
	Reliability   float64 `json:"reliability"`
}

func (d *SubmitRatingDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("execution", d.Execution).FloatRange(ScoreMin, ScoreMax, internal_errors.ErrCodeInvalidScore)
	validator.Field("collaboration", d.Collaboration).FloatRange(ScoreMin, ScoreMax, internal_errors.ErrCodeInvalidScore)
	validator.Field("leadership", d.Leadership).FloatRange(ScoreMin, ScoreMax, internal_errors.ErrCodeInvalidScore)
	validator.Field("ethics", d.Ethics).FloatRange(ScoreMin, ScoreMax, internal_errors.ErrCodeInvalidScore)
	validator.Field("reliability", d.Reliability).FloatRange(ScoreMin, ScoreMax, internal_errors.ErrCodeInvalidScore)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// Dimensions converts the DTO payload into a domain rating.
func (d *SubmitRatingDTO) Dimensions() Dimensions {
	return Dimensions{
		Execution:     d.Execution,
		Collaboration: d.Collaboration,
		Leadership:    d.Leadership,
		Ethics:        d.Ethics,
		Reliability:   d.Reliability,
	}
}

// ScoreView is the read model returned to clients: running averages plus
// the derived overall, all rounded to one decimal for display.
type ScoreView struct {
	UserID      int64   `json:"user_id"`
	Execution   float64 `json:"execution"`
	Collab      float64 `json:"collaboration"`
	Leadership  float64 `json:"leadership"`
	Ethics      float64 `json:"ethics"`
	Reliability float64 `json:"reliability"`
	Overall     float64 `json:"overall"`
	RatingCount int64   `json:"rating_count"`
}

func NewScoreView(s *Score) *ScoreView {
	return &ScoreView{
		UserID:      s.UserID,
		Execution:   RoundScore(s.Dimensions.Execution),
		Collab:      RoundScore(s.Dimensions.Collaboration),
		Leadership:  RoundScore(s.Dimensions.Leadership),
		Ethics:      RoundScore(s.Dimensions.Ethics),
		Reliability: RoundScore(s.Dimensions.Reliability),
		Overall:     RoundScore(s.Overall()),
		RatingCount: s.RatingCount,
	}
}
