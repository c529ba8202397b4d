package opr

import "math"

// HistoryPoint is a team's OPR as of the MatchIndex-th played match.
type HistoryPoint struct {
	MatchIndex int     `json:"match_idx"`
	OPR        float64 `json:"opr"`
}

// Progression holds every team's OPR after each played match.
type Progression struct {
	Labels []int                `json:"labels"`
	Teams  []string             `json:"teams"`
	Series map[string][]float64 `json:"series"`
}

// RatingHistory re-solves every prefix of the played matches and records the
// team's rounded OPR after each one. Before the team's first match its OPR is 0.
func RatingHistory(matches []Match, team string) ([]HistoryPoint, error) {
	played := Played(matches)
	history := make([]HistoryPoint, 0, len(played))
	for i := 1; i <= len(played); i++ {
		r, err := ComputeRatings(played[:i])
		if err != nil {
			return nil, err
		}
		history = append(history, HistoryPoint{MatchIndex: i, OPR: round2(r[team])})
	}
	return history, nil
}

// BuildProgression solves each prefix once and reads every team's value from
// that solve.
func BuildProgression(matches []Match) (Progression, error) {
	played := Played(matches)
	p := Progression{
		Labels: make([]int, len(played)),
		Teams:  Teams(played),
		Series: make(map[string][]float64),
	}
	for _, t := range p.Teams {
		p.Series[t] = make([]float64, 0, len(played))
	}
	for i := 1; i <= len(played); i++ {
		p.Labels[i-1] = i
		r, err := ComputeRatings(played[:i])
		if err != nil {
			return Progression{}, err
		}
		for _, t := range p.Teams {
			p.Series[t] = append(p.Series[t], round2(r[t]))
		}
	}
	return p, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
