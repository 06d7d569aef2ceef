package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"LunaroNews/internal/domain"
	"LunaroNews/internal/ports"
)

const (
	runsTable  = "pipeline_runs"
	itemsTable = "pipeline_run_items"

	itemPublished = "published"
	itemFailed    = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS pipeline_runs (
    id          UUID PRIMARY KEY,
    category    TEXT        NOT NULL,
    item_limit  INTEGER     NOT NULL,
    fetched     INTEGER     NOT NULL,
    published   INTEGER     NOT NULL,
    failed      INTEGER     NOT NULL,
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS pipeline_run_items (
    run_id     UUID    NOT NULL REFERENCES pipeline_runs (id) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    status     TEXT    NOT NULL,
    stage      TEXT    NOT NULL DEFAULT '',
    source_url TEXT    NOT NULL,
    title      TEXT    NOT NULL,
    post_id    INTEGER,
    slug       TEXT    NOT NULL DEFAULT '',
    error      TEXT    NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS pipeline_run_items_source_url_idx ON pipeline_run_items (source_url);`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Open connects to Postgres through the pgx database/sql driver.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// PostgresLedger keeps an audit trail of pipeline runs in Postgres.
type PostgresLedger struct {
	db    *sql.DB
	newID func() uuid.UUID
}

var _ ports.PublicationLedger = (*PostgresLedger)(nil)

// NewPostgresLedger wires a sql.DB implementation.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db, newID: uuid.New}
}

// EnsureSchema creates the ledger tables when they are missing.
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	if l.db == nil {
		return nil
	}
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

// RecordRun stores the run summary and one row per fetched item.
func (l *PostgresLedger) RecordRun(ctx context.Context, report domain.RunReport) error {
	if l.db == nil {
		return nil
	}

	runID := l.newID()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := runInsert(runID, report).RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if items, ok := itemsInsert(runID, report); ok {
		if _, err := items.RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("insert run items: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger tx: %w", err)
	}
	return nil
}

func runInsert(id uuid.UUID, report domain.RunReport) sq.InsertBuilder {
	return psql.Insert(runsTable).
		Columns("id", "category", "item_limit", "fetched", "published", "failed", "started_at", "finished_at").
		Values(id, report.Category, report.Limit, report.Fetched, report.PublishedCount(), report.FailedCount(),
			report.StartedAt.UTC(), report.FinishedAt.UTC())
}

type itemRow struct {
	position int
	status   string
	stage    string
	url      string
	title    string
	postID   sql.NullInt64
	slug     string
	err      string
}

func itemRows(report domain.RunReport) []itemRow {
	rows := make([]itemRow, 0, report.PublishedCount()+report.FailedCount())
	for _, a := range report.Published {
		rows = append(rows, itemRow{
			status: itemPublished,
			url:    a.Raw.URL,
			title:  a.TranslatedTitle,
			postID: sql.NullInt64{Int64: int64(a.WordPressID), Valid: a.WordPressID > 0},
			slug:   a.Slug,
		})
	}
	for _, f := range report.Failures {
		rows = append(rows, itemRow{
			status: itemFailed,
			stage:  string(f.Stage),
			url:    f.SourceURL,
			title:  f.Title,
			err:    f.Err,
		})
	}
	for i := range rows {
		rows[i].position = i
	}
	return rows
}

func itemsInsert(runID uuid.UUID, report domain.RunReport) (sq.InsertBuilder, bool) {
	rows := itemRows(report)
	if len(rows) == 0 {
		return sq.InsertBuilder{}, false
	}
	insert := psql.Insert(itemsTable).
		Columns("run_id", "position", "status", "stage", "source_url", "title", "post_id", "slug", "error")
	for _, r := range rows {
		insert = insert.Values(runID, r.position, r.status, r.stage, r.url, r.title, r.postID, r.slug, r.err)
	}
	return insert, true
}
