// Package storage persists finished training episodes in SQLite using the
// pure-Go modernc.org/sqlite driver.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events"
	"github.com/mitchelldurbincs/BombermanReinforcementLearning/internal/game/events/subscribers"
)

// Store manages the SQLite connection holding episode history.
type Store struct {
	db *sql.DB
}

var _ subscribers.EpisodeStore = (*Store)(nil)

// Stats aggregates the stored episodes of one session, or of all sessions
type Stats struct {
	Episodes  int
	Wins      int
	Deaths    int
	Truncated int
	BestScore int
	AvgScore  float64
	AvgReward float64
	LastEnded time.Time
}

// WinRate is the fraction of episodes that cleared the level
func (s Stats) WinRate() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Episodes)
}

// ExpandPath replaces a leading ~ with the user's home directory
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/")), nil
}

// Open creates or opens the database at path, creating parent directories
// and the schema as needed.
func Open(ctx context.Context, path string) (*Store, error) {
	path, err := ExpandPath(path)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// a single writer avoids SQLITE_BUSY between the recorder and readers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return store, nil
}

func (s *Store) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS episodes (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			episode INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			score INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			total_reward REAL NOT NULL,
			train_steps INTEGER NOT NULL,
			mean_loss REAL NOT NULL,
			epsilon REAL NOT NULL,
			duration_ms INTEGER NOT NULL,
			ended_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_episodes_session ON episodes(session_id, episode);
		CREATE INDEX IF NOT EXISTS idx_episodes_score ON episodes(score DESC);
		CREATE INDEX IF NOT EXISTS idx_episodes_ended ON episodes(ended_at DESC);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveEpisode records a finished episode. Saving the same episode twice
// replaces the earlier row.
func (s *Store) SaveEpisode(ctx context.Context, e events.EpisodeSummary) error {
	if e.ID == "" {
		return errors.New("storage: episode summary has no id")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO episodes
		 (id, session_id, episode, outcome, score, steps, total_reward, train_steps, mean_loss, epsilon, duration_ms, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.SessionID,
		e.Episode,
		string(e.Outcome),
		e.Score,
		e.Steps,
		e.TotalReward,
		e.TrainSteps,
		e.MeanLoss,
		e.Epsilon,
		e.Duration.Milliseconds(),
		e.EndedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save episode: %w", err)
	}
	return nil
}

const episodeColumns = `id, session_id, episode, outcome, score, steps, total_reward,
	train_steps, mean_loss, epsilon, duration_ms, ended_at`

// RecentEpisodes returns the latest episodes, newest first. An empty
// sessionID matches every session.
func (s *Store) RecentEpisodes(ctx context.Context, sessionID string, limit int) ([]events.EpisodeSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryEpisodes(ctx,
		`SELECT `+episodeColumns+` FROM episodes
		 WHERE (? = '' OR session_id = ?)
		 ORDER BY ended_at DESC, episode DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
}

// TopEpisodes returns the highest scoring episodes across all sessions.
// Ties go to the episode that needed fewer steps.
func (s *Store) TopEpisodes(ctx context.Context, limit int) ([]events.EpisodeSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.queryEpisodes(ctx,
		`SELECT `+episodeColumns+` FROM episodes
		 ORDER BY score DESC, steps ASC
		 LIMIT ?`,
		limit,
	)
}

func (s *Store) queryEpisodes(ctx context.Context, query string, args ...any) ([]events.EpisodeSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query episodes: %w", err)
	}
	defer rows.Close()

	var out []events.EpisodeSummary
	for rows.Next() {
		var (
			e          events.EpisodeSummary
			outcome    string
			durationMs int64
			endedMs    int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.Episode,
			&outcome,
			&e.Score,
			&e.Steps,
			&e.TotalReward,
			&e.TrainSteps,
			&e.MeanLoss,
			&e.Epsilon,
			&durationMs,
			&endedMs,
		); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.Outcome = events.Outcome(outcome)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		e.EndedAt = time.UnixMilli(endedMs).UTC()
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// Summary aggregates stored episodes. An empty sessionID covers every session.
func (s *Store) Summary(ctx context.Context, sessionID string) (Stats, error) {
	var (
		stats   Stats
		lastMs  sql.NullInt64
		outcome = func(o events.Outcome) string {
			return fmt.Sprintf("COALESCE(SUM(CASE WHEN outcome = '%s' THEN 1 ELSE 0 END), 0)", o)
		}
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), `+
			outcome(events.OutcomeWon)+`, `+
			outcome(events.OutcomeDied)+`, `+
			outcome(events.OutcomeTruncated)+`,
		        COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(AVG(total_reward), 0), MAX(ended_at)
		 FROM episodes
		 WHERE (? = '' OR session_id = ?)`,
		sessionID, sessionID,
	).Scan(
		&stats.Episodes,
		&stats.Wins,
		&stats.Deaths,
		&stats.Truncated,
		&stats.BestScore,
		&stats.AvgScore,
		&stats.AvgReward,
		&lastMs,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot summarize episodes: %w", err)
	}
	if lastMs.Valid {
		stats.LastEnded = time.UnixMilli(lastMs.Int64).UTC()
	}
	return stats, nil
}

// Clear deletes the episodes of one session, or all episodes when sessionID is empty
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM episodes WHERE (? = '' OR session_id = ?)`, sessionID, sessionID)
	if err != nil {
		return fmt.Errorf("storage: cannot clear episodes: %w", err)
	}
	return nil
}
