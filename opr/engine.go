// Package opr estimates Offensive Power Ratings from match scores.
//
// A team's OPR is its least-squares contribution to the scores it posts,
// under the model that every team contributes a fixed amount per match.
package opr

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ErrUnderconstrained is returned when the match set does not pin down every
// team's rating (the Gram matrix AᵗA cannot be inverted).
var ErrUnderconstrained = errors.New("opr: match set does not constrain all teams")

// Match is one scheduled match between two teams. A nil score means the
// match has not been played yet.
type Match struct {
	Team1  string `json:"team1"`
	Team2  string `json:"team2"`
	Score1 *int   `json:"score1"`
	Score2 *int   `json:"score2"`
	Tag    string `json:"tag"`
}

// Played reports whether both final scores are known.
func (m Match) Played() bool {
	return m.Score1 != nil && m.Score2 != nil
}

// Ratings maps a team identifier to its OPR.
type Ratings map[string]float64

// Played returns the played matches of ms in their original order.
func Played(ms []Match) []Match {
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		if m.Played() {
			out = append(out, m)
		}
	}
	return out
}

// Teams returns the distinct teams of the played matches, sorted.
func Teams(ms []Match) []string {
	seen := make(map[string]struct{})
	for _, m := range ms {
		if !m.Played() {
			continue
		}
		seen[m.Team1] = struct{}{}
		seen[m.Team2] = struct{}{}
	}
	teams := make([]string, 0, len(seen))
	for t := range seen {
		teams = append(teams, t)
	}
	sort.Strings(teams)
	return teams
}

// ComputeRatings solves x = (AᵗA)⁻¹Aᵗb where each played match adds one row
// per team (a 1 in that team's column) against the score it posted.
// Unplayed matches are ignored. No played matches yields an empty map.
func ComputeRatings(matches []Match) (Ratings, error) {
	teams := Teams(matches)
	if len(teams) == 0 {
		return Ratings{}, nil
	}
	idx := make(map[string]int, len(teams))
	for i, t := range teams {
		idx[t] = i
	}

	cols := len(teams)
	var rows int
	var data, b []float64
	for _, m := range matches {
		if !m.Played() {
			continue
		}
		r := make([]float64, cols)
		r[idx[m.Team1]] = 1
		data = append(data, r...)
		b = append(b, float64(*m.Score1))

		r = make([]float64, cols)
		r[idx[m.Team2]] = 1
		data = append(data, r...)
		b = append(b, float64(*m.Score2))
		rows += 2
	}
	if rows == 0 {
		return Ratings{}, nil
	}

	a := mat.NewDense(rows, cols, data)
	bv := mat.NewVecDense(rows, b)

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var atb mat.VecDense
	atb.MulVec(a.T(), bv)

	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w (condition number %g)", ErrUnderconstrained, float64(cond))
		}
		return nil, fmt.Errorf("invert gram matrix: %w", err)
	}

	var x mat.VecDense
	x.MulVec(&inv, &atb)

	out := make(Ratings, cols)
	for i, t := range teams {
		out[t] = x.AtVec(i)
	}
	return out, nil
}
