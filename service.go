package main

import (
	"context"
	"errors"
	"time"

	"aspire-opr/opr"
	"aspire-opr/views"
)

type matchFetcher interface {
	FetchAll(ctx context.Context) ([]opr.Match, []PageResult)
}

// ratingService turns the fetched match list into the rankings and team
// payloads. It keeps no state of its own.
type ratingService struct {
	source matchFetcher
}

func (s *ratingService) RankingsPage(ctx context.Context) (views.RankingsPage, error) {
	all, results := s.source.FetchAll(ctx)
	played := opr.Played(all)
	defer observeSince(solveDuration, "rankings", time.Now())

	ratings, err := opr.ComputeRatings(played)
	solvesTotal.Inc()
	if err != nil {
		return views.RankingsPage{}, countUnderconstrained(err)
	}
	standings := opr.BuildStandings(played, ratings)

	progression, err := opr.BuildProgression(played)
	solvesTotal.Add(float64(len(played)))
	if err != nil {
		return views.RankingsPage{}, countUnderconstrained(err)
	}

	page := views.RankingsPage{
		WorldHigh:   standings.WorldHigh,
		Standings:   standings.Teams,
		Matches:     make([]views.MatchRow, len(played)),
		Progression: progression,
		Sources:     sourceStatuses(results),
	}
	for i, m := range played {
		page.Matches[i] = views.MatchRow{
			Index:  i + 1,
			Tag:    m.Tag,
			Team1:  m.Team1,
			Score1: *m.Score1,
			Team2:  m.Team2,
			Score2: *m.Score2,
		}
	}
	log.Infow("📊 rankings computed", "teams", len(standings.Teams), "played", len(played), "world_high", standings.WorldHigh)
	return page, nil
}

func (s *ratingService) TeamPage(ctx context.Context, team string) (views.TeamPage, error) {
	all, results := s.source.FetchAll(ctx)
	defer observeSince(solveDuration, "team_history", time.Now())

	history, err := opr.RatingHistory(all, team)
	solvesTotal.Add(float64(len(history)))
	if err != nil {
		return views.TeamPage{}, countUnderconstrained(err)
	}
	return views.TeamPage{
		Team:    team,
		History: history,
		Sources: sourceStatuses(results),
	}, nil
}

func countUnderconstrained(err error) error {
	if errors.Is(err, opr.ErrUnderconstrained) {
		underconstrainedTotal.Inc()
	}
	return err
}

func sourceStatuses(results []PageResult) []views.SourceStatus {
	out := make([]views.SourceStatus, len(results))
	for i, r := range results {
		out[i] = views.SourceStatus{
			Page:         r.Page.Name,
			Tag:          r.Page.Tag,
			Matches:      len(r.Matches),
			FromSnapshot: r.FromSnapshot,
		}
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}
	return out
}
