package leaderboard

import (
	"fmt"
	"log/slog"

	internal_errors "github.com/careertodo/platform/internal"
)

// Category selects which population a leaderboard covers.
type Category string

const (
	CategoryStudents     Category = "students"
	CategoryUniversities Category = "universities"
	CategoryProjects     Category = "projects"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Repository loads the unranked entries for each category.
type Repository interface {
	StudentEntries() ([]Entry, error)
	UniversityEntries() ([]Entry, error)
	ProjectEntries() ([]Entry, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetLeaderboard returns the ranked board for a category, truncated to
// limit entries. Ranks are assigned over the full population before
// truncation, so the cutoff never changes anyone's rank.
func (s *Service) GetLeaderboard(category Category, limit int) ([]RankedEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var (
		entries []Entry
		err     error
	)
	switch category {
	case CategoryStudents:
		entries, err = s.repo.StudentEntries()
	case CategoryUniversities:
		entries, err = s.repo.UniversityEntries()
	case CategoryProjects:
		entries, err = s.repo.ProjectEntries()
	default:
		return nil, internal_errors.NewValidationError(
			fmt.Sprintf("unknown leaderboard category: %s", category),
			internal_errors.ErrCodeInvalidCategory)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s leaderboard entries: %w", category, err)
	}

	ranked := Rank(entries)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	s.logger.Debug("leaderboard built", "category", category, "entries", len(ranked))

	return ranked, nil
}
