package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/leadscout/discovery-bot/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore persists leads in a local SQLite database. The UNIQUE constraint
// on identity_hash is what closes the check-then-insert race between
// concurrent discovery passes: Insert reports false instead of creating a
// second row.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

// Open initializes or connects to the lead database at the given path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Exists reports whether a record with the URL's identity hash is stored.
func (s *SQLiteStore) Exists(ctx context.Context, pageURL string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM businesses WHERE identity_hash = ?",
		ComputeIdentity(pageURL),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return count > 0, nil
}

// Insert persists a scored business. It returns false without mutation when a
// record with the same identity already exists; INSERT OR IGNORE against the
// UNIQUE index makes the duplicate check and the insert a single atomic step.
// On success the record's identity hash, timestamps, and row ID are filled in.
func (s *SQLiteStore) Insert(ctx context.Context, business *models.Business) (bool, error) {
	if business.PageURL == "" {
		return false, fmt.Errorf("insert business: page_url is empty")
	}

	now := time.Now().UTC()
	hash := ComputeIdentity(business.PageURL)

	signals, err := json.Marshal(business.ScoringSignals)
	if err != nil {
		return false, fmt.Errorf("marshal scoring signals: %w", err)
	}
	metadata, err := json.Marshal(business.Metadata)
	if err != nil {
		return false, fmt.Errorf("marshal metadata: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO businesses (
			business_name, platform, page_url, category, location,
			phone, email, description, page_created_date, metadata,
			identity_hash, confidence_score, priority, scoring_signals,
			discovered_at, last_updated_at, notified
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		business.BusinessName, string(business.Platform), business.PageURL,
		business.Category, business.Location, business.Phone, business.Email,
		business.Description, business.PageCreatedDate, string(metadata),
		hash, business.ConfidenceScore, string(business.Priority), string(signals),
		now.Format(time.RFC3339Nano), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert business: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert business: %w", err)
	}
	if affected == 0 {
		// Identity already stored; normal outcome for a duplicate or a lost race.
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("insert business: %w", err)
	}

	business.ID = id
	business.IdentityHash = hash
	business.DiscoveredAt = now
	business.LastUpdatedAt = now
	business.Notified = false
	return true, nil
}

// PendingNotifications returns all unnotified records, highest-value leads
// first: confidence score descending, then discovery time descending.
func (s *SQLiteStore) PendingNotifications(ctx context.Context) ([]models.Business, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM businesses
		WHERE notified = 0
		ORDER BY confidence_score DESC, discovered_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query pending notifications: %w", err)
	}
	defer rows.Close()

	return scanBusinesses(rows)
}

// MarkNotified flips a record's notified flag to true. The transition is
// one-way and the call is idempotent: marking an already-notified record is a
// no-op, not an error.
func (s *SQLiteStore) MarkNotified(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE businesses
		SET notified = 1, last_updated_at = ?
		WHERE id = ? AND notified = 0`,
		time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// RecentBusinesses returns stored leads newest-first with optional platform
// and category filters.
func (s *SQLiteStore) RecentBusinesses(ctx context.Context, limit int, platform, category string) ([]models.Business, error) {
	query := selectColumns + " FROM businesses WHERE 1=1"
	var args []any

	if platform != "" {
		query += " AND platform = ?"
		args = append(args, platform)
	}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}

	query += " ORDER BY discovered_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent businesses: %w", err)
	}
	defer rows.Close()

	return scanBusinesses(rows)
}

// Statistics returns aggregate counts over the stored leads.
func (s *SQLiteStore) Statistics(ctx context.Context) (models.Statistics, error) {
	stats := models.Statistics{
		ByPlatform: make(map[string]int),
		ByCategory: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM businesses").Scan(&stats.Total); err != nil {
		return stats, fmt.Errorf("count businesses: %w", err)
	}

	if err := s.countGrouped(ctx, "platform", stats.ByPlatform); err != nil {
		return stats, err
	}
	if err := s.countGrouped(ctx, "category", stats.ByCategory); err != nil {
		return stats, err
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339Nano)
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM businesses WHERE discovered_at > ?", cutoff,
	).Scan(&stats.Recent24h); err != nil {
		return stats, fmt.Errorf("count recent businesses: %w", err)
	}

	return stats, nil
}

func (s *SQLiteStore) countGrouped(ctx context.Context, column string, dest map[string]int) error {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT %s, COUNT(1) FROM businesses GROUP BY %s", column, column))
	if err != nil {
		return fmt.Errorf("count by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key sql.NullString
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("scan %s count: %w", column, err)
		}
		dest[key.String] = count
	}
	return rows.Err()
}

// AddSearchRecord appends one audit row to the search history log.
func (s *SQLiteStore) AddSearchRecord(ctx context.Context, record models.SearchRecord) error {
	executedAt := record.ExecutedAt
	if executedAt.IsZero() {
		executedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_history (platform, query, executed_at, result_count)
		VALUES (?, ?, ?, ?)`,
		string(record.Platform), record.Query,
		executedAt.UTC().Format(time.RFC3339Nano), record.ResultCount,
	)
	if err != nil {
		return fmt.Errorf("add search record: %w", err)
	}
	return nil
}

const selectColumns = `
	SELECT id, business_name, platform, page_url, category, location,
	       phone, email, description, page_created_date, metadata,
	       identity_hash, confidence_score, priority, scoring_signals,
	       discovered_at, last_updated_at, notified`

func scanBusinesses(rows *sql.Rows) ([]models.Business, error) {
	var businesses []models.Business

	for rows.Next() {
		var (
			b            models.Business
			platform     string
			priority     string
			metadataJSON sql.NullString
			signalsJSON  sql.NullString
			discoveredAt string
			lastUpdated  string
			notified     int
		)

		err := rows.Scan(
			&b.ID, &b.BusinessName, &platform, &b.PageURL, &b.Category,
			&b.Location, &b.Phone, &b.Email, &b.Description, &b.PageCreatedDate,
			&metadataJSON, &b.IdentityHash, &b.ConfidenceScore, &priority,
			&signalsJSON, &discoveredAt, &lastUpdated, &notified,
		)
		if err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}

		b.Platform = models.Platform(platform)
		b.Priority = models.Priority(priority)
		b.Notified = notified != 0

		if metadataJSON.Valid && metadataJSON.String != "" && metadataJSON.String != "null" {
			if err := json.Unmarshal([]byte(metadataJSON.String), &b.Metadata); err != nil {
				logrus.Warnf("Corrupt metadata on business %d: %v", b.ID, err)
			}
		}
		if signalsJSON.Valid && signalsJSON.String != "" && signalsJSON.String != "null" {
			if err := json.Unmarshal([]byte(signalsJSON.String), &b.ScoringSignals); err != nil {
				logrus.Warnf("Corrupt scoring signals on business %d: %v", b.ID, err)
			}
		}

		if ts, err := time.Parse(time.RFC3339Nano, discoveredAt); err == nil {
			b.DiscoveredAt = ts
		}
		if ts, err := time.Parse(time.RFC3339Nano, lastUpdated); err == nil {
			b.LastUpdatedAt = ts
		}

		businesses = append(businesses, b)
	}

	return businesses, rows.Err()
}
