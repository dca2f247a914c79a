package reputation

import (
	"errors"
	"math"
	"time"

	internal_errors "github.com/careertodo/platform/internal"
)

const (
	// ScoreMin and ScoreMax bound every reputation dimension.
	ScoreMin = 0.0
	ScoreMax = 5.0

	// DimensionCount is the number of rated dimensions; the overall
	// score is their equal-weight mean.
	DimensionCount = 5
)

var (
	ErrScoreNotFound = errors.New("reputation score not found")

	// ErrStaleScore signals that the score row moved under the caller
	// between reading it and writing the folded averages back.
	ErrStaleScore = errors.New("reputation score changed concurrently")
)

// Dimensions holds the five rated aspects of a user's track record.
type Dimensions struct {
	Execution     float64 `json:"execution"`
	Collaboration float64 `json:"collaboration"`
	Leadership    float64 `json:"leadership"`
	Ethics        float64 `json:"ethics"`
	Reliability   float64 `json:"reliability"`
}

// Validate checks that every dimension lies within [ScoreMin, ScoreMax].
func (d Dimensions) Validate() error {
	for _, dim := range []struct {
		name  string
		value float64
	}{
		{"execution", d.Execution},
		{"collaboration", d.Collaboration},
		{"leadership", d.Leadership},
		{"ethics", d.Ethics},
		{"reliability", d.Reliability},
	} {
		if math.IsNaN(dim.value) || dim.value < ScoreMin || dim.value > ScoreMax {
			return internal_errors.NewValidationFieldError(dim.name,
				"score must be between 0 and 5", internal_errors.ErrCodeInvalidScore)
		}
	}
	return nil
}

// Overall returns the equal-weight mean of the five dimensions, at full
// precision. Rounding happens only at the display edge, via RoundScore.
func (d Dimensions) Overall() float64 {
	return (d.Execution + d.Collaboration + d.Leadership + d.Ethics + d.Reliability) / DimensionCount
}

// RoundScore rounds a score to one decimal place for presentation.
func RoundScore(v float64) float64 {
	return math.Round(v*10) / 10
}

// Score is a user's aggregated reputation: the current per-dimension
// running averages plus how many ratings fed them.
type Score struct {
	UserID      int64      `json:"user_id"`
	Dimensions  Dimensions `json:"dimensions"`
	RatingCount int64      `json:"rating_count"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Overall is the derived overall for this score; it is never persisted.
func (s *Score) Overall() float64 {
	return s.Dimensions.Overall()
}

// ApplyRating folds one rating into the running per-dimension averages.
// With n prior ratings each dimension moves from avg to
// (avg*n + rating)/(n+1).
func (s *Score) ApplyRating(r Dimensions) {
	n := float64(s.RatingCount)
	s.Dimensions.Execution = (s.Dimensions.Execution*n + r.Execution) / (n + 1)
	s.Dimensions.Collaboration = (s.Dimensions.Collaboration*n + r.Collaboration) / (n + 1)
	s.Dimensions.Leadership = (s.Dimensions.Leadership*n + r.Leadership) / (n + 1)
	s.Dimensions.Ethics = (s.Dimensions.Ethics*n + r.Ethics) / (n + 1)
	s.Dimensions.Reliability = (s.Dimensions.Reliability*n + r.Reliability) / (n + 1)
	s.RatingCount++
}

// NewScore returns the zero-valued reputation a user starts with.
func NewScore(userID int64) *Score {
	return &Score{UserID: userID}
}
