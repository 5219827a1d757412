package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"scr/internal/domain"
)

// DefaultHistoryTable holds one row per finalized run
const DefaultHistoryTable = "scr_runs"

// ErrInvalidTableName is returned for table names that cannot be safely quoted
var ErrInvalidTableName = errors.New("invalid table name")

// execer is the part of *sql.DB the history store needs
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// HistoryStore archives finalized runs in a MySQL table
type HistoryStore struct {
	db      execer
	closer  func() error
	table   string
	created bool
}

// OpenHistory connects to the MySQL database named in dsn.
// The DSN uses the go-sql-driver format, e.g. user:pass@tcp(127.0.0.1:3306)/reports.
func OpenHistory(ctx context.Context, dsn string) (*HistoryStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse history dsn: %w", err)
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("history dsn must name a database")
	}
	cfg.ParseTime = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database server: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database server: %w", err)
	}

	return &HistoryStore{db: db, closer: db.Close, table: DefaultHistoryTable}, nil
}

// newHistoryStore wraps an existing connection
func newHistoryStore(db execer, table string) (*HistoryStore, error) {
	if !isValidTableName(table) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTableName, table)
	}
	return &HistoryStore{db: db, table: table}, nil
}

// Record inserts one row for rec, creating the table on first use
func (h *HistoryStore) Record(ctx context.Context, rec domain.RunRecord) error {
	if err := h.ensureTable(ctx); err != nil {
		return err
	}

	var status domain.Status
	var report []byte
	if rec.Run != nil {
		status = rec.Run.Status
		data, err := rec.Run.Marshal()
		if err != nil {
			return err
		}
		report = data
	}

	var jobID sql.NullString
	if rec.JobID != "" {
		jobID = sql.NullString{String: rec.JobID, Valid: true}
	}

	query := fmt.Sprintf("INSERT INTO `%s` (name, build, passed, status, started_at, ended_at, job_id, report) VALUES (?, ?, ?, ?, ?, ?, ?, ?)", h.table)
	_, err := h.db.ExecContext(ctx, query,
		rec.Name, rec.Build, rec.Passed, string(status),
		rec.StartedAt.UTC(), rec.EndedAt.UTC(), jobID, report)
	if err != nil {
		return fmt.Errorf("insert run history: %w", err)
	}
	return nil
}

// Close releases the connection
func (h *HistoryStore) Close() error {
	if h.closer == nil {
		return nil
	}
	return h.closer()
}

func (h *HistoryStore) ensureTable(ctx context.Context) error {
	if h.created {
		return nil
	}
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, "+
		"name VARCHAR(255) NOT NULL, "+
		"build VARCHAR(255) NOT NULL, "+
		"passed BOOLEAN NOT NULL, "+
		"status VARCHAR(16) NOT NULL, "+
		"started_at DATETIME(3) NOT NULL, "+
		"ended_at DATETIME(3) NOT NULL, "+
		"job_id VARCHAR(64) NULL, "+
		"report JSON NULL)", h.table)
	if _, err := h.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", h.table, err)
	}
	h.created = true
	return nil
}

// isValidTableName accepts plain identifiers only
func isValidTableName(name string) bool {
	if len(name) == 0 || len(name) > 64 {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) < 0
}
