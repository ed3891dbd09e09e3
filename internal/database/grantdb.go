package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ohack/grantfinder/internal/model"
)

// ErrGrantNotFound is returned when no grant matches the lookup.
var ErrGrantNotFound = errors.New("grant not found")

// GrantDB provides SQLite-based storage for discovered grants and run
// history.
//
// Design decision: We upsert grants keyed by source URL rather than
// inserting every find because:
//  1. The same opportunity is rediscovered on every run
//  2. Refreshing keeps deadlines and scores current
//  3. first_seen_at preserves when the grant originally appeared
type GrantDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures GrantDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a GrantDB in the specified directory.
func Open(dbDir string, opts Options) (*GrantDB, error) {
	dbPath := filepath.Join(dbDir, "grantfinder.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite: mode=rw prevents creating new files, mode=rwc
	// allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	gdb := &GrantDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if err := gdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return gdb, nil
}

// Close closes the database connection.
func (gdb *GrantDB) Close() error {
	return gdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (gdb *GrantDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS grants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_url TEXT NOT NULL UNIQUE,
		source_name TEXT,
		title TEXT NOT NULL,
		description TEXT,
		funding_json TEXT,
		deadline TEXT,
		application_url TEXT,
		eligibility TEXT,
		tech_focus_json TEXT,
		sectors_json TEXT,
		volunteer_component INTEGER NOT NULL DEFAULT 0,
		hackathon_eligible INTEGER NOT NULL DEFAULT 1,
		remote_participation INTEGER,
		relevance_score REAL NOT NULL,
		first_seen_at TIMESTAMP NOT NULL,
		last_seen_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_grants_score ON grants(relevance_score DESC);

	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		seeds INTEGER NOT NULL,
		urls_found INTEGER NOT NULL,
		urls_crawled INTEGER NOT NULL,
		urls_failed INTEGER NOT NULL,
		results_found INTEGER NOT NULL,
		grants_persisted INTEGER NOT NULL,
		error_message TEXT
	);`
	_, err := gdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveGrants upserts the grants and returns how many rows were written.
func (gdb *GrantDB) SaveGrants(ctx context.Context, grants []*model.Grant) (int, error) {
	if len(grants) == 0 {
		return 0, nil
	}

	tx, err := gdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO grants (
			source_url, source_name, title, description, funding_json,
			deadline, application_url, eligibility, tech_focus_json,
			sectors_json, volunteer_component, hackathon_eligible,
			remote_participation, relevance_score, first_seen_at, last_seen_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_url) DO UPDATE SET
			source_name = excluded.source_name,
			title = excluded.title,
			description = excluded.description,
			funding_json = excluded.funding_json,
			deadline = excluded.deadline,
			application_url = excluded.application_url,
			eligibility = excluded.eligibility,
			tech_focus_json = excluded.tech_focus_json,
			sectors_json = excluded.sectors_json,
			volunteer_component = excluded.volunteer_component,
			hackathon_eligible = excluded.hackathon_eligible,
			remote_participation = excluded.remote_participation,
			relevance_score = excluded.relevance_score,
			last_seen_at = excluded.last_seen_at`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for _, grant := range grants {
		funding, err := marshalNullable(grant.FundingAmount)
		if err != nil {
			return saved, err
		}
		techFocus, err := marshalNullable(grant.TechFocus)
		if err != nil {
			return saved, err
		}
		sectors, err := marshalNullable(grant.NonprofitSectors)
		if err != nil {
			return saved, err
		}

		var remote sql.NullBool
		if grant.RemoteParticipation != nil {
			remote = sql.NullBool{Bool: *grant.RemoteParticipation, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			grant.SourceURL, grant.SourceName, grant.Title, grant.Description,
			funding, grant.Deadline, grant.ApplicationURL, grant.Eligibility,
			techFocus, sectors, grant.VolunteerComponent, grant.HackathonEligible,
			remote, grant.RelevanceScore, grant.FoundAt, grant.FoundAt,
		); err != nil {
			return saved, fmt.Errorf("failed to save grant %s: %w", grant.SourceURL, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return saved, nil
}

// GetGrantBySourceURL returns the grant stored for the URL.
func (gdb *GrantDB) GetGrantBySourceURL(ctx context.Context, sourceURL string) (*model.Grant, error) {
	row := gdb.db.QueryRowContext(ctx, `
		SELECT source_url, source_name, title, description, funding_json,
			deadline, application_url, eligibility, tech_focus_json,
			sectors_json, volunteer_component, hackathon_eligible,
			remote_participation, relevance_score, first_seen_at
		FROM grants WHERE source_url = ?`, sourceURL)
	grant, err := scanGrant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrGrantNotFound
	}
	return grant, err
}

// ListGrants returns stored grants with at least minScore, best first.
// limit <= 0 means no limit.
func (gdb *GrantDB) ListGrants(ctx context.Context, minScore float64, limit int) ([]*model.Grant, error) {
	query := `
		SELECT source_url, source_name, title, description, funding_json,
			deadline, application_url, eligibility, tech_focus_json,
			sectors_json, volunteer_component, hackathon_eligible,
			remote_participation, relevance_score, first_seen_at
		FROM grants WHERE relevance_score >= ?
		ORDER BY relevance_score DESC, title ASC`
	args := []any{minScore}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := gdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	var grants []*model.Grant
	for rows.Next() {
		grant, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		grants = append(grants, grant)
	}
	return grants, rows.Err()
}

// CountGrants returns the total number of stored grants.
func (gdb *GrantDB) CountGrants(ctx context.Context) (int, error) {
	var count int
	err := gdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM grants").Scan(&count)
	return count, err
}

// SaveRun records a run's summary in the history table.
func (gdb *GrantDB) SaveRun(ctx context.Context, report *model.RunReport) error {
	_, err := gdb.db.ExecContext(ctx, `
		INSERT INTO runs (
			started_at, finished_at, seeds, urls_found, urls_crawled,
			urls_failed, results_found, grants_persisted, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.StartedAt, report.FinishedAt, len(report.Seeds),
		report.Stats.URLsFound, report.Stats.URLsCrawled, report.Stats.URLsFailed,
		report.Stats.ResultsFound, report.GrantsPersisted, report.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanGrant.
type scanner interface {
	Scan(dest ...any) error
}

func scanGrant(s scanner) (*model.Grant, error) {
	var grant model.Grant
	var funding, techFocus, sectors sql.NullString
	var remote sql.NullBool

	err := s.Scan(&grant.SourceURL, &grant.SourceName, &grant.Title,
		&grant.Description, &funding, &grant.Deadline, &grant.ApplicationURL,
		&grant.Eligibility, &techFocus, &sectors, &grant.VolunteerComponent,
		&grant.HackathonEligible, &remote, &grant.RelevanceScore, &grant.FoundAt)
	if err != nil {
		return nil, err
	}

	if funding.Valid && funding.String != "" {
		if err := json.Unmarshal([]byte(funding.String), &grant.FundingAmount); err != nil {
			return nil, fmt.Errorf("failed to decode funding: %w", err)
		}
	}
	if techFocus.Valid && techFocus.String != "" {
		if err := json.Unmarshal([]byte(techFocus.String), &grant.TechFocus); err != nil {
			return nil, fmt.Errorf("failed to decode tech focus: %w", err)
		}
	}
	if sectors.Valid && sectors.String != "" {
		if err := json.Unmarshal([]byte(sectors.String), &grant.NonprofitSectors); err != nil {
			return nil, fmt.Errorf("failed to decode sectors: %w", err)
		}
	}
	if remote.Valid {
		grant.RemoteParticipation = &remote.Bool
	}
	return &grant, nil
}

// marshalNullable JSON-encodes v, mapping nil slices and pointers to
// SQL NULL.
func marshalNullable(v any) (sql.NullString, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode field: %w", err)
	}
	if string(data) == "null" {
		return sql.NullString{}, nil
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
