package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/tinytelemetry/wingo-live/internal/history/migrate"
	"github.com/tinytelemetry/wingo-live/internal/model"
)

// Store keeps committed prediction snapshots in DuckDB.
type Store struct {
	db           *sql.DB
	dbPath       string
	QueryTimeout time.Duration
}

var _ model.SnapshotStore = (*Store)(nil)

// NewStore opens or creates the history database.
// If dbPath is empty, an in-memory database is used.
func NewStore(dbPath string) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("history: mkdir: %w", err)
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrate.NewRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:           db,
		dbPath:       dbPath,
		QueryTimeout: 5 * time.Second,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) queryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.QueryTimeout)
}

// RecordSnapshot appends one committed response.
func (s *Store) RecordSnapshot(ctx context.Context, snap model.Snapshot) error {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var numbers sql.NullString
	if snap.Numbers != nil {
		numbers = sql.NullString{String: joinInts(snap.Numbers), Valid: true}
	}
	var latest sql.NullInt64
	if snap.LatestNumber.Valid {
		latest = sql.NullInt64{Int64: int64(snap.LatestNumber.Value), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO snapshots
		(committed_at, session, seq, use_model, method, size, color, numbers, latest_issue, latest_number, latest_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.CommittedAt.UTC(), snap.Session, snap.Seq, snap.UseModel, snap.Method, snap.Size, snap.Color,
		numbers, snap.LatestIssue, latest, snap.LatestNumber.Text,
	)
	if err != nil {
		return fmt.Errorf("history: insert snapshot: %w", err)
	}
	return nil
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (s *Store) RecentSnapshots(ctx context.Context, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 50
	}
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT committed_at, session, seq, use_model, method, size, color,
			numbers, latest_issue, latest_number, latest_text
		FROM snapshots
		ORDER BY committed_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		var (
			snap    model.Snapshot
			seq     uint64
			numbers sql.NullString
			latest  sql.NullInt64
		)
		if err := rows.Scan(&snap.CommittedAt, &snap.Session, &seq, &snap.UseModel, &snap.Method, &snap.Size, &snap.Color,
			&numbers, &snap.LatestIssue, &latest, &snap.LatestNumber.Text); err != nil {
			return nil, fmt.Errorf("history: scan snapshot: %w", err)
		}
		snap.Seq = seq
		if numbers.Valid {
			snap.Numbers = splitInts(numbers.String)
		}
		if latest.Valid {
			snap.LatestNumber.Value = int(latest.Int64)
			snap.LatestNumber.Valid = true
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// DeleteBefore removes snapshots committed before cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	res, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE committed_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("history: delete: %w", err)
	}
	return res.RowsAffected()
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) []int {
	out := []int{}
	for _, p := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(p)); err == nil {
			out = append(out, n)
		}
	}
	return out
}
