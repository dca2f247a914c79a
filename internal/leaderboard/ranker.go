package leaderboard

import "sort"

// Entry is one unranked leaderboard row: an entity and its score.
type Entry struct {
	EntityID int64   `json:"entity_id"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
}

// RankedEntry is an Entry with its 1-based position assigned.
type RankedEntry struct {
	Entry
	Rank int `json:"rank"`
}

// Rank orders entries by score descending and assigns sequential
// 1-based ranks. Ties are broken by ascending entity ID, and tied
// entries still receive distinct consecutive ranks, so rankings are
// deterministic for identical input. The input slice is not modified;
// an empty input yields an empty (non-nil) result.
func Rank(entries []Entry) []RankedEntry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].EntityID < sorted[j].EntityID
	})

	ranked := make([]RankedEntry, len(sorted))
	for i, e := range sorted {
		ranked[i] = RankedEntry{Entry: e, Rank: i + 1}
	}
	return ranked
}
