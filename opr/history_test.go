package opr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingHistory_OnePointPerPlayedMatch(t *testing.T) {
	matches := []Match{
		match("A", "B", 10, 20),
		{Team1: "A", Team2: "C"},
		match("B", "C", 30, 6),
		match("C", "A", 9, 21),
	}

	h, err := RatingHistory(matches, "C")
	require.NoError(t, err)
	require.Len(t, h, 3)
	for i, p := range h {
		assert.Equal(t, i+1, p.MatchIndex)
	}
	assert.Equal(t, 0.0, h[0].OPR)
	assert.Equal(t, 6.0, h[1].OPR)
	assert.Equal(t, 7.5, h[2].OPR)
}

func TestRatingHistory_Rounds(t *testing.T) {
	matches := []Match{
		match("A", "B", 10, 1),
		match("A", "B", 10, 1),
		match("A", "B", 11, 1),
	}
	h, err := RatingHistory(matches, "A")
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.Equal(t, 10.33, h[2].OPR)
}

func TestRatingHistory_UnknownTeam(t *testing.T) {
	h, err := RatingHistory([]Match{match("A", "B", 1, 2), match("B", "A", 3, 4)}, "Z")
	require.NoError(t, err)
	assert.Equal(t, []HistoryPoint{{1, 0}, {2, 0}}, h)
}

func TestRatingHistory_Empty(t *testing.T) {
	h, err := RatingHistory(nil, "A")
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestBuildProgression_MatchesPerTeamHistory(t *testing.T) {
	matches := []Match{
		match("A", "B", 10, 20),
		match("B", "C", 30, 6),
		{Team1: "D", Team2: "A"},
		match("C", "A", 9, 21),
	}

	p, err := BuildProgression(matches)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, p.Labels)
	assert.Equal(t, []string{"A", "B", "C"}, p.Teams)

	for _, team := range p.Teams {
		h, err := RatingHistory(matches, team)
		require.NoError(t, err)
		require.Len(t, p.Series[team], len(h))
		for i, pt := range h {
			assert.Equal(t, pt.OPR, p.Series[team][i], team)
		}
	}
}
