// Package storage provides SQLite-based persistence for players, their best
// scores and run history.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/lane-rush/internal/leaderboard"
	"github.com/vovakirdan/lane-rush/internal/player"
)

// Store manages the SQLite database connection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ leaderboard.Store = (*Store)(nil)
	_ player.Reader     = (*Store)(nil)
	_ player.Writer     = (*Store)(nil)
	_ player.KeyBinder  = (*Store)(nil)
)

// Run is one finished round.
type Run struct {
	ID       int64
	PlayerID string // Empty for anonymous play
	Score    int
	Level    int
	Duration time.Duration
	PlayedAt time.Time
}

// Stats aggregates run history.
type Stats struct {
	GamesCount int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	LastPlayed time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	// SQLite allows one writer; serialize through a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db, now: time.Now}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
// Timestamps are unix milliseconds.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS profiles (
			player_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			ssh_key TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS scores (
			player_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scores_top ON scores(score DESC, updated_at ASC);

		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			player_id TEXT NOT NULL DEFAULT '',
			score INTEGER NOT NULL,
			level INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			played_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_player ON runs(player_id, played_at DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before key binding lack the ssh_key column
	var hasKey int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info('profiles') WHERE name = 'ssh_key'",
	).Scan(&hasKey); err != nil {
		return err
	}
	if hasKey == 0 {
		if _, err := s.db.Exec("ALTER TABLE profiles ADD COLUMN ssh_key TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SubmitScore stores the entry as the player's leaderboard row if it beats
// the stored score. Reports whether the row changed.
func (s *Store) SubmitScore(ctx context.Context, e leaderboard.Entry) (bool, error) {
	if e.PlayerID == "" {
		return false, fmt.Errorf("storage: submit score: empty player id")
	}
	at := e.UpdatedAt
	if at.IsZero() {
		at = s.now()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (player_id, display_name, avatar, score, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar = excluded.avatar,
			score = excluded.score,
			updated_at = excluded.updated_at
		 WHERE excluded.score > scores.score`,
		e.PlayerID, e.DisplayName, e.Avatar, e.Score, at.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot save score: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot get affected rows: %w", err)
	}
	return n > 0, nil
}

// TopScores retrieves up to limit leaderboard rows, best first.
func (s *Store) TopScores(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultTopN
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, display_name, avatar, score, updated_at
		 FROM scores
		 ORDER BY score DESC, updated_at ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query scores: %w", err)
	}
	defer rows.Close()

	var entries []leaderboard.Entry
	for rows.Next() {
		var e leaderboard.Entry
		var updatedAt int64
		if err := rows.Scan(&e.PlayerID, &e.DisplayName, &e.Avatar, &e.Score, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.UpdatedAt = time.UnixMilli(updatedAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// Profile loads a player's profile together with their leaderboard score.
func (s *Store) Profile(ctx context.Context, playerID string) (player.Profile, error) {
	p := player.Profile{ID: playerID}
	err := s.db.QueryRowContext(ctx,
		`SELECT p.display_name, p.avatar, COALESCE(sc.score, 0)
		 FROM profiles p
		 LEFT JOIN scores sc ON sc.player_id = p.player_id
		 WHERE p.player_id = ?`,
		playerID,
	).Scan(&p.DisplayName, &p.Avatar, &p.HighScore)

	if errors.Is(err, sql.ErrNoRows) {
		return player.Profile{}, player.ErrNotFound
	}
	if err != nil {
		return player.Profile{}, fmt.Errorf("storage: cannot query profile: %w", err)
	}
	return p, nil
}

// SaveProfile creates or updates a profile. The new display name and avatar
// are copied onto the player's leaderboard row, if any.
func (s *Store) SaveProfile(ctx context.Context, p player.Profile) error {
	if p.ID == "" {
		return fmt.Errorf("storage: save profile: empty player id")
	}
	now := s.now().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO profiles (player_id, display_name, avatar, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET
			display_name = excluded.display_name,
			avatar = excluded.avatar,
			updated_at = excluded.updated_at`,
		p.ID, p.DisplayName, p.Avatar, now, now,
	); err != nil {
		return fmt.Errorf("storage: cannot save profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE scores SET display_name = ?, avatar = ? WHERE player_id = ?",
		p.DisplayName, p.Avatar, p.ID,
	); err != nil {
		return fmt.Errorf("storage: cannot update leaderboard row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit profile: %w", err)
	}
	return nil
}

// BindKey ties a public key fingerprint to the profile the first time one
// is presented. It reports whether fingerprint matches the bound key.
// Returns player.ErrNotFound if the profile does not exist.
func (s *Store) BindKey(ctx context.Context, playerID, fingerprint string) (bool, error) {
	if fingerprint == "" {
		return false, fmt.Errorf("storage: bind key: empty fingerprint")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"UPDATE profiles SET ssh_key = ?, updated_at = ? WHERE player_id = ? AND ssh_key = ''",
		fingerprint, s.now().UnixMilli(), playerID,
	); err != nil {
		return false, fmt.Errorf("storage: cannot bind key: %w", err)
	}

	var bound string
	err = tx.QueryRowContext(ctx, "SELECT ssh_key FROM profiles WHERE player_id = ?", playerID).Scan(&bound)
	if errors.Is(err, sql.ErrNoRows) {
		return false, player.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("storage: cannot query key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("storage: cannot commit key: %w", err)
	}
	return bound == fingerprint, nil
}

// SaveRun records a finished round.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(ctx context.Context, r Run) (int64, error) {
	at := r.PlayedAt
	if at.IsZero() {
		at = s.now()
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (player_id, score, level, duration_ms, played_at) VALUES (?, ?, ?, ?, ?)",
		r.PlayerID, r.Score, r.Level, r.Duration.Milliseconds(), at.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

// RecentRuns returns a player's latest runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, playerID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_id, score, level, duration_ms, played_at
		 FROM runs
		 WHERE player_id = ?
		 ORDER BY played_at DESC, id DESC
		 LIMIT ?`,
		playerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var durationMs, playedAt int64
		if err := rows.Scan(&r.ID, &r.PlayerID, &r.Score, &r.Level, &durationMs, &playedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.PlayedAt = time.UnixMilli(playedAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// Stats aggregates the run history of one player, or of everyone when
// playerID is empty.
func (s *Store) Stats(ctx context.Context, playerID string) (Stats, error) {
	query := `SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0),
		COALESCE(SUM(score), 0), COALESCE(MAX(played_at), 0) FROM runs`
	var args []any
	if playerID != "" {
		query += " WHERE player_id = ?"
		args = append(args, playerID)
	}

	var st Stats
	var lastPlayed int64
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&st.GamesCount, &st.HighScore, &st.AvgScore, &st.TotalScore, &lastPlayed)
	if err != nil {
		return Stats{}, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	if lastPlayed > 0 {
		st.LastPlayed = time.UnixMilli(lastPlayed)
	}
	return st, nil
}
