package reputation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	internal_errors "github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/auth"
)

// Repository persists reputation scores. Upsert is guarded on the
// rating count the caller read: it returns ErrStaleScore when another
// writer moved the row in between, so running averages never lose a
// concurrent rating.
type Repository interface {
	GetByUserID(userID int64) (*Score, error)
	Upsert(score *Score, priorCount int64) error
}

// AccessGate answers whether a viewer holds an approved, unexpired
// access grant over a subject's profile. Implemented by the
// verification service.
type AccessGate interface {
	HasActiveGrant(ctx context.Context, viewerID, subjectID int64) (bool, error)
}

// submitRetries bounds how often SubmitRating reloads and reapplies
// after a stale write.
const submitRetries = 3

type Service struct {
	repo       Repository
	accessGate AccessGate
	logger     *slog.Logger
}

func NewService(repo Repository, accessGate AccessGate, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		accessGate: accessGate,
		logger:     logger,
	}
}

// canView decides whether viewer may read subjectID's reputation:
// the subject themselves, anyone with an oversight permission, or a
// viewer holding an active access grant for that subject.
func (s *Service) canView(ctx context.Context, viewer *auth.User, subjectID int64) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	if viewer.ID == subjectID {
		return true, nil
	}
	if viewer.HasAnyPermission([]string{auth.PermissionViewReputation, auth.PermissionManageStudents, auth.PermissionAdmin}) {
		return true, nil
	}
	if s.accessGate == nil {
		return false, nil
	}
	return s.accessGate.HasActiveGrant(ctx, viewer.ID, subjectID)
}

// GetScore returns the reputation view for a user. Users without any
// rating history yet read back as all zeros rather than an error.
func (s *Service) GetScore(ctx context.Context, viewer *auth.User, userID int64) (*ScoreView, error) {
	allowed, err := s.canView(ctx, viewer, userID)
	if err != nil {
		return nil, fmt.Errorf("check reputation access: %w", err)
	}
	if !allowed {
		s.logger.Warn("reputation access denied", "viewer_id", viewerID(viewer), "subject_id", userID)
		return nil, internal_errors.NewForbiddenError("not allowed to view this reputation", internal_errors.ErrCodeUnauthorizedAccess)
	}

	score, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, ErrScoreNotFound) {
			return NewScoreView(NewScore(userID)), nil
		}
		return nil, fmt.Errorf("get reputation score: %w", err)
	}

	return NewScoreView(score), nil
}

// SubmitRating folds a peer rating into the subject's running averages.
// Permission to submit is enforced at the route; the service still
// rejects self-ratings.
func (s *Service) SubmitRating(ctx context.Context, rater *auth.User, subjectID int64, dto *SubmitRatingDTO) (*ScoreView, error) {
	if rater != nil && rater.ID == subjectID {
		return nil, internal_errors.NewValidationError("cannot rate yourself", internal_errors.ErrCodeInvalidScore)
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		score, err := s.repo.GetByUserID(subjectID)
		if err != nil {
			if !errors.Is(err, ErrScoreNotFound) {
				return nil, fmt.Errorf("get reputation score: %w", err)
			}
			score = NewScore(subjectID)
		}
		priorCount := score.RatingCount

		score.ApplyRating(dto.Dimensions())

		err = s.repo.Upsert(score, priorCount)
		if err == nil {
			s.logger.Info("rating applied",
				"rater_id", viewerID(rater),
				"subject_id", subjectID,
				"project_id", dto.ProjectID,
				"rating_count", score.RatingCount)
			return NewScoreView(score), nil
		}
		if !errors.Is(err, ErrStaleScore) {
			return nil, fmt.Errorf("save reputation score: %w", err)
		}
		if attempt >= submitRetries {
			s.logger.Warn("rating conflicted repeatedly", "subject_id", subjectID, "attempts", attempt)
			return nil, internal_errors.NewConflictError("score changed concurrently, retry the rating", internal_errors.ErrCodeScoreConflict)
		}
		// another rating landed first; reload and fold ours on top
	}
}

func viewerID(u *auth.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}
