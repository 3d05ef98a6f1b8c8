package storage

const schemaSQL = `
-- One row per (integration, page). Re-crawls update the row in place.
CREATE TABLE IF NOT EXISTS site_content (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    integration_id TEXT NOT NULL,
    url TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    UNIQUE(integration_id, url)
);

CREATE INDEX IF NOT EXISTS idx_site_content_integration ON site_content(integration_id);

-- One row per persisted ScrapeSite call
CREATE TABLE IF NOT EXISTS scrape_runs (
    id TEXT PRIMARY KEY,
    integration_id TEXT NOT NULL,
    root_url TEXT NOT NULL,
    page_count INTEGER NOT NULL,
    failed_pages INTEGER NOT NULL DEFAULT 0,
    pages_inserted INTEGER NOT NULL DEFAULT 0,
    pages_updated INTEGER NOT NULL DEFAULT 0,
    finished_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scrape_runs_integration ON scrape_runs(integration_id, finished_at);

-- View summarising stored content per integration
CREATE VIEW IF NOT EXISTS integration_summary AS
SELECT
    integration_id,
    COUNT(*) AS pages,
    SUM(LENGTH(content)) AS content_bytes,
    MAX(updated_at) AS last_updated
FROM site_content
GROUP BY integration_id;
`
