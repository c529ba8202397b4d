package opr

import "sort"

// Standing is one row of the rankings table.
type Standing struct {
	Rank          int     `json:"rank"`
	Team          string  `json:"team"`
	OPR           float64 `json:"opr"`
	RankingPoints int     `json:"rp"`
	TotalPoints   int     `json:"tbp"`
	MaxScore      int     `json:"max"`
	Top           bool    `json:"top"`
}

// Standings is the ranked table plus the highest single-match score seen.
type Standings struct {
	Teams     []Standing `json:"teams"`
	WorldHigh int        `json:"world_high"`
}

// BuildStandings aggregates win/tie points (2/1/0), total points and best
// single-match score over the played matches for every rated team, ordered by
// descending OPR.
func BuildStandings(matches []Match, ratings Ratings) Standings {
	teams := make([]string, 0, len(ratings))
	for t := range ratings {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	rows := make(map[string]*Standing, len(teams))
	for _, t := range teams {
		rows[t] = &Standing{Team: t, OPR: ratings[t]}
	}

	for _, m := range matches {
		if !m.Played() {
			continue
		}
		s1, s2 := *m.Score1, *m.Score2
		r1, ok1 := rows[m.Team1]
		r2, ok2 := rows[m.Team2]
		if ok1 {
			r1.TotalPoints += s1
			r1.MaxScore = max(r1.MaxScore, s1)
		}
		if ok2 {
			r2.TotalPoints += s2
			r2.MaxScore = max(r2.MaxScore, s2)
		}
		switch {
		case s1 > s2:
			if ok1 {
				r1.RankingPoints += 2
			}
		case s2 > s1:
			if ok2 {
				r2.RankingPoints += 2
			}
		default:
			if ok1 {
				r1.RankingPoints++
			}
			if ok2 {
				r2.RankingPoints++
			}
		}
	}

	out := Standings{Teams: make([]Standing, 0, len(teams))}
	for _, t := range teams {
		out.Teams = append(out.Teams, *rows[t])
		out.WorldHigh = max(out.WorldHigh, rows[t].MaxScore)
	}
	sort.SliceStable(out.Teams, func(i, j int) bool {
		return out.Teams[i].OPR > out.Teams[j].OPR
	})
	for i := range out.Teams {
		out.Teams[i].Rank = i + 1
	}
	if len(out.Teams) > 0 {
		out.Teams[0].Top = true
	}
	return out
}
