// Package storage persists crawled site content in SQLite, one row per
// integration and page URL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/masahif/sitecorpus/internal/crawler"
	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// StoredPage is a page row as persisted for an integration.
type StoredPage struct {
	IntegrationID string    `json:"integrationId"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ScrapeRun summarises one persisted scrape.
type ScrapeRun struct {
	ID            string    `json:"id"`
	IntegrationID string    `json:"integrationId"`
	RootURL       string    `json:"rootUrl"`
	PageCount     int       `json:"pageCount"`
	FailedPages   int       `json:"failedPages"`
	PagesInserted int       `json:"pagesInserted"`
	PagesUpdated  int       `json:"pagesUpdated"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// IntegrationSummary aggregates the stored content of one integration.
type IntegrationSummary struct {
	IntegrationID string
	Pages         int
	ContentBytes  int64
}

// SQLiteStorage stores site content in a SQLite database.
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// execQuerier is satisfied by both *sql.DB and *sql.Tx.
type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool - single connection prevents lock conflicts
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	storage := &SQLiteStorage{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}

	if err := storage.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// InitSchema applies connection pragmas and creates missing tables.
func (s *SQLiteStorage) InitSchema() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000", // 30 second timeout for locks
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// UpsertPage stores page for integrationID. An existing row for the same URL
// gets the new title and content; otherwise a row is inserted. It reports
// whether a row was inserted.
func (s *SQLiteStorage) UpsertPage(ctx context.Context, integrationID string, page crawler.PageRecord) (bool, error) {
	if integrationID == "" {
		return false, ErrEmptyIntegrationID
	}
	return upsertPage(ctx, s.db, integrationID, page, s.now())
}

func upsertPage(ctx context.Context, q execQuerier, integrationID string, page crawler.PageRecord, now time.Time) (bool, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`SELECT id FROM site_content WHERE integration_id = ? AND url = ?`,
		integrationID, page.URL,
	).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = q.ExecContext(ctx, `
			INSERT INTO site_content (integration_id, url, title, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, integrationID, page.URL, page.Title, page.Content, now, now)
		if err != nil {
			return false, fmt.Errorf("failed to insert page %s: %w", page.URL, err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up page %s: %w", page.URL, err)
	}

	_, err = q.ExecContext(ctx, `
		UPDATE site_content SET title = ?, content = ?, updated_at = ? WHERE id = ?
	`, page.Title, page.Content, now, id)
	if err != nil {
		return false, fmt.Errorf("failed to update page %s: %w", page.URL, err)
	}
	return false, nil
}

// SaveResult upserts every page of result for integrationID in a single
// transaction and records the run.
func (s *SQLiteStorage) SaveResult(ctx context.Context, integrationID, rootURL string, result *crawler.ScrapeResult) (*ScrapeRun, error) {
	if integrationID == "" {
		return nil, ErrEmptyIntegrationID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now()
	run := &ScrapeRun{
		ID:            uuid.NewString(),
		IntegrationID: integrationID,
		RootURL:       rootURL,
		PageCount:     result.PageCount,
		FailedPages:   result.FailedPages(),
		FinishedAt:    now,
	}

	for _, page := range result.Pages {
		inserted, err := upsertPage(ctx, tx, integrationID, page, now)
		if err != nil {
			return nil, err
		}
		if inserted {
			run.PagesInserted++
		} else {
			run.PagesUpdated++
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO scrape_runs (id, integration_id, root_url, page_count, failed_pages, pages_inserted, pages_updated, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.IntegrationID, run.RootURL, run.PageCount, run.FailedPages, run.PagesInserted, run.PagesUpdated, run.FinishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record scrape run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return run, nil
}

// GetPage returns the stored page for integrationID and pageURL, or ErrNotFound.
func (s *SQLiteStorage) GetPage(ctx context.Context, integrationID, pageURL string) (*StoredPage, error) {
	page := StoredPage{IntegrationID: integrationID}
	err := s.db.QueryRowContext(ctx, `
		SELECT url, title, content, created_at, updated_at
		FROM site_content WHERE integration_id = ? AND url = ?
	`, integrationID, pageURL).Scan(&page.URL, &page.Title, &page.Content, &page.CreatedAt, &page.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}
	return &page, nil
}

// ListPages returns every stored page of integrationID ordered by URL.
func (s *SQLiteStorage) ListPages(ctx context.Context, integrationID string) ([]StoredPage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT url, title, content, created_at, updated_at
		FROM site_content WHERE integration_id = ? ORDER BY url
	`, integrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pages := []StoredPage{}
	for rows.Next() {
		page := StoredPage{IntegrationID: integrationID}
		if err := rows.Scan(&page.URL, &page.Title, &page.Content, &page.CreatedAt, &page.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

// ListRuns returns the recorded scrapes of integrationID, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context, integrationID string) ([]ScrapeRun, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root_url, page_count, failed_pages, pages_inserted, pages_updated, finished_at
		FROM scrape_runs WHERE integration_id = ? ORDER BY finished_at DESC, rowid DESC
	`, integrationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scrape runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := []ScrapeRun{}
	for rows.Next() {
		run := ScrapeRun{IntegrationID: integrationID}
		if err := rows.Scan(&run.ID, &run.RootURL, &run.PageCount, &run.FailedPages,
			&run.PagesInserted, &run.PagesUpdated, &run.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scrape run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Summary returns page count and content size for integrationID.
func (s *SQLiteStorage) Summary(ctx context.Context, integrationID string) (*IntegrationSummary, error) {
	summary := IntegrationSummary{IntegrationID: integrationID}
	err := s.db.QueryRowContext(ctx, `
		SELECT pages, content_bytes FROM integration_summary WHERE integration_id = ?
	`, integrationID).Scan(&summary.Pages, &summary.ContentBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return &summary, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to summarise integration: %w", err)
	}
	return &summary, nil
}
