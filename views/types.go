// Package views holds the payloads handed to the presentation layer.
package views

import "aspire-opr/opr"

type MatchRow struct {
	Index  int    `json:"index"`
	Tag    string `json:"tag"`
	Team1  string `json:"team1"`
	Score1 int    `json:"score1"`
	Team2  string `json:"team2"`
	Score2 int    `json:"score2"`
}

// SourceStatus reports how a single source page was resolved.
type SourceStatus struct {
	Page         string `json:"page"`
	Tag          string `json:"tag"`
	Matches      int    `json:"matches"`
	FromSnapshot bool   `json:"from_snapshot,omitempty"`
	Error        string `json:"error,omitempty"`
}

type RankingsPage struct {
	WorldHigh   int             `json:"world_high"`
	Standings   []opr.Standing  `json:"standings"`
	Matches     []MatchRow      `json:"matches"`
	Progression opr.Progression `json:"progression"`
	Sources     []SourceStatus  `json:"sources"`
}

type TeamPage struct {
	Team    string             `json:"team"`
	History []opr.HistoryPoint `json:"history"`
	Sources []SourceStatus     `json:"sources"`
}
