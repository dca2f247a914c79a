package leaderboard_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/careertodo/platform/internal/leaderboard"
)

func TestLeaderboard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Leaderboard Suite")
}

var _ = Describe("Rank", func() {
	It("should order entries by score descending with 1-based ranks", func() {
		entries := []leaderboard.Entry{
			{EntityID: 1, Name: "low", Score: 1.5},
			{EntityID: 2, Name: "high", Score: 4.8},
			{EntityID: 3, Name: "mid", Score: 3.2},
		}

		ranked := leaderboard.Rank(entries)

		Expect(ranked).To(HaveLen(3))
		Expect(ranked[0].EntityID).To(Equal(int64(2)))
		Expect(ranked[0].Rank).To(Equal(1))
		Expect(ranked[1].EntityID).To(Equal(int64(3)))
		Expect(ranked[1].Rank).To(Equal(2))
		Expect(ranked[2].EntityID).To(Equal(int64(1)))
		Expect(ranked[2].Rank).To(Equal(3))
	})

	It("should break ties by ascending entity ID with distinct consecutive ranks", func() {
		entries := []leaderboard.Entry{
			{EntityID: 20, Score: 4.5},
			{EntityID: 10, Score: 4.5},
			{EntityID: 30, Score: 3.0},
		}

		ranked := leaderboard.Rank(entries)

		Expect(ranked[0].EntityID).To(Equal(int64(10)))
		Expect(ranked[0].Rank).To(Equal(1))
		Expect(ranked[1].EntityID).To(Equal(int64(20)))
		Expect(ranked[1].Rank).To(Equal(2))
		Expect(ranked[2].EntityID).To(Equal(int64(30)))
		Expect(ranked[2].Rank).To(Equal(3))
	})

	It("should be deterministic for identical input", func() {
		entries := []leaderboard.Entry{
			{EntityID: 5, Score: 2.0},
			{EntityID: 3, Score: 2.0},
			{EntityID: 4, Score: 2.0},
		}

		first := leaderboard.Rank(entries)
		second := leaderboard.Rank(entries)

		Expect(second).To(Equal(first))
	})

	It("should return an empty ranking for empty input", func() {
		ranked := leaderboard.Rank([]leaderboard.Entry{})
		Expect(ranked).NotTo(BeNil())
		Expect(ranked).To(BeEmpty())
	})

	It("should not modify the input slice", func() {
		entries := []leaderboard.Entry{
			{EntityID: 1, Score: 1.0},
			{EntityID: 2, Score: 5.0},
		}

		leaderboard.Rank(entries)

		Expect(entries[0].EntityID).To(Equal(int64(1)))
		Expect(entries[1].EntityID).To(Equal(int64(2)))
	})

	It("should rank a single entry first", func() {
		ranked := leaderboard.Rank([]leaderboard.Entry{{EntityID: 7, Score: 0}})
		Expect(ranked).To(HaveLen(1))
		Expect(ranked[0].Rank).To(Equal(1))
	})
})
