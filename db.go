package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"aspire-opr/opr"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
)

var ErrNoSnapshot = errors.New("no snapshot stored for page")

// matchStore keeps the last fetched copy of each source page. Ratings are
// never written here, they are recomputed from matches on every request.
type matchStore struct {
	db *sql.DB
}

func openMatchStore(path string) (*matchStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer; sqlite serializes anyway
	db.SetMaxOpenConns(1)

	s := &matchStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *matchStore) migrate() error {
	_, err := s.db.Exec(`
    CREATE TABLE IF NOT EXISTS match_snapshots (
        id TEXT PRIMARY KEY,
        page TEXT NOT NULL,
        fetched_at DATETIME NOT NULL,
        match_count INTEGER NOT NULL
    );`)
	if err != nil {
		return fmt.Errorf("create match_snapshots: %w", err)
	}

	_, err = s.db.Exec(`
    CREATE TABLE IF NOT EXISTS snapshot_matches (
        snapshot_id TEXT NOT NULL REFERENCES match_snapshots(id) ON DELETE CASCADE,
        seq INTEGER NOT NULL,
        team1 TEXT NOT NULL,
        team2 TEXT NOT NULL,
        score1 INTEGER,
        score2 INTEGER,
        tag TEXT,
        PRIMARY KEY (snapshot_id, seq)
    );`)
	if err != nil {
		return fmt.Errorf("create snapshot_matches: %w", err)
	}

	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_match_snapshots_page ON match_snapshots(page, fetched_at);`)
	return err
}

func (s *matchStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot stores matches as the newest copy of page and drops older copies.
func (s *matchStore) SaveSnapshot(ctx context.Context, page string, matches []opr.Match) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_matches WHERE snapshot_id IN (SELECT id FROM match_snapshots WHERE page = ?)`, page); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM match_snapshots WHERE page = ?`, page); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO match_snapshots (id, page, fetched_at, match_count) VALUES (?, ?, ?, ?)`,
		id, page, time.Now().UTC(), len(matches)); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_matches (snapshot_id, seq, team1, team2, score1, score2, tag)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, m := range matches {
		if _, err := stmt.ExecContext(ctx, id, i, m.Team1, m.Team2, nullScore(m.Score1), nullScore(m.Score2), m.Tag); err != nil {
			return "", fmt.Errorf("insert match %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// LatestSnapshot returns the matches of the newest stored copy of page.
func (s *matchStore) LatestSnapshot(ctx context.Context, page string) ([]opr.Match, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM match_snapshots WHERE page = ? ORDER BY fetched_at DESC LIMIT 1`, page).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT team1, team2, score1, score2, tag FROM snapshot_matches WHERE snapshot_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := []opr.Match{}
	for rows.Next() {
		var m opr.Match
		var s1, s2 sql.NullInt64
		var tag sql.NullString
		if err := rows.Scan(&m.Team1, &m.Team2, &s1, &s2, &tag); err != nil {
			return nil, err
		}
		m.Score1 = scoreFromNull(s1)
		m.Score2 = scoreFromNull(s2)
		m.Tag = tag.String
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func nullScore(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func scoreFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
