package leaderboard_test

import (
	"errors"
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	internal_errors "github.com/careertodo/platform/internal"
	"github.com/careertodo/platform/internal/leaderboard"
)

// Mock repository for testing
type mockEntryRepository struct {
	students     []leaderboard.Entry
	universities []leaderboard.Entry
	projects     []leaderboard.Entry
	loadError    error
}

func (m *mockEntryRepository) StudentEntries() ([]leaderboard.Entry, error) {
	if m.loadError != nil {
		return nil, m.loadError
	}
	return m.students, nil
}

func (m *mockEntryRepository) UniversityEntries() ([]leaderboard.Entry, error) {
	if m.loadError != nil {
		return nil, m.loadError
	}
	return m.universities, nil
}

func (m *mockEntryRepository) ProjectEntries() ([]leaderboard.Entry, error) {
	if m.loadError != nil {
		return nil, m.loadError
	}
	return m.projects, nil
}

var _ = Describe("Leaderboard Service", func() {
	var (
		service *leaderboard.Service
		repo    *mockEntryRepository
	)

	BeforeEach(func() {
		repo = &mockEntryRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		service = leaderboard.NewService(repo, logger)
	})

	Describe("GetLeaderboard", func() {
		It("should rank the students category", func() {
			repo.students = []leaderboard.Entry{
				{EntityID: 1, Name: "alice", Score: 3.0},
				{EntityID: 2, Name: "bob", Score: 4.5},
			}

			ranked, err := service.GetLeaderboard(leaderboard.CategoryStudents, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ranked).To(HaveLen(2))
			Expect(ranked[0].Name).To(Equal("bob"))
			Expect(ranked[0].Rank).To(Equal(1))
		})

		It("should serve each category from its own population", func() {
			repo.universities = []leaderboard.Entry{{EntityID: 1, Name: "uni", Score: 2.0}}
			repo.projects = []leaderboard.Entry{{EntityID: 9, Name: "proj", Score: 1.0}}

			unis, err := service.GetLeaderboard(leaderboard.CategoryUniversities, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(unis).To(HaveLen(1))
			Expect(unis[0].Name).To(Equal("uni"))

			projects, err := service.GetLeaderboard(leaderboard.CategoryProjects, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(projects).To(HaveLen(1))
			Expect(projects[0].Name).To(Equal("proj"))
		})

		It("should reject an unknown category", func() {
			_, err := service.GetLeaderboard(leaderboard.Category("aliens"), 0)
			Expect(err).To(HaveOccurred())

			appErr, ok := internal_errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal_errors.ErrCodeInvalidCategory))
		})

		It("should return an empty board when there are no entries", func() {
			ranked, err := service.GetLeaderboard(leaderboard.CategoryStudents, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ranked).NotTo(BeNil())
			Expect(ranked).To(BeEmpty())
		})

		It("should assign ranks over the full population before truncating", func() {
			repo.students = []leaderboard.Entry{
				{EntityID: 1, Score: 1.0},
				{EntityID: 2, Score: 5.0},
				{EntityID: 3, Score: 3.0},
				{EntityID: 4, Score: 4.0},
			}

			ranked, err := service.GetLeaderboard(leaderboard.CategoryStudents, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ranked).To(HaveLen(2))
			Expect(ranked[0].EntityID).To(Equal(int64(2)))
			Expect(ranked[0].Rank).To(Equal(1))
			Expect(ranked[1].EntityID).To(Equal(int64(4)))
			Expect(ranked[1].Rank).To(Equal(2))
		})

		It("should fall back to the default limit for non-positive limits", func() {
			for i := 1; i <= leaderboard.DefaultLimit+10; i++ {
				repo.students = append(repo.students, leaderboard.Entry{EntityID: int64(i), Score: float64(i)})
			}

			ranked, err := service.GetLeaderboard(leaderboard.CategoryStudents, -3)
			Expect(err).NotTo(HaveOccurred())
			Expect(ranked).To(HaveLen(leaderboard.DefaultLimit))
		})

		It("should surface repository failures", func() {
			repo.loadError = errors.New("db down")

			_, err := service.GetLeaderboard(leaderboard.CategoryStudents, 0)
			Expect(err).To(HaveOccurred())
		})
	})
})
