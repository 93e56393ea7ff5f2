// internal/workers/infrastructure/archive-record/store.go
package archiverecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cinematicsodium/awards/internal/models"
)

var ErrAlreadyArchived = errors.New("ALREADY_ARCHIVED")

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLArchive keeps one row per issued log id.
type SQLArchive struct {
	db      *sql.DB
	table   string
	dialect Dialect
}

func NewSQLArchive(db *sql.DB, dialect Dialect, table string) *SQLArchive {
	return &SQLArchive{db: db, table: table, dialect: dialect}
}

func (a *SQLArchive) bind(n int) string {
	if a.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Migrate creates the archive table when missing.
func (a *SQLArchive) Migrate(ctx context.Context) error {
	_, err := a.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			log_id         TEXT PRIMARY KEY,
			source         TEXT NOT NULL,
			category       TEXT NOT NULL,
			award_type     TEXT NOT NULL,
			funding_org    TEXT NOT NULL,
			nominee_count  INTEGER NOT NULL,
			monetary_total INTEGER NOT NULL,
			hours_total    INTEGER NOT NULL,
			record         TEXT NOT NULL,
			archived_at    TEXT NOT NULL
		)`, a.table))
	if err != nil {
		return fmt.Errorf("migrate %s: %w", a.table, err)
	}
	return nil
}

func (a *SQLArchive) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := a.db.QueryRowContext(ctx, fmt.Sprintf(
		`SELECT EXISTS(SELECT 1 FROM %s WHERE log_id = %s)`, a.table, a.bind(1)), id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup %s: %w", id, err)
	}
	return exists, nil
}

func (a *SQLArchive) Insert(ctx context.Context, rec *models.AwardRecord, archivedAt time.Time) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID, err)
	}
	monetary, hours := rec.Totals()

	binds := make([]interface{}, 10)
	for i := range binds {
		binds[i] = a.bind(i + 1)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (
			log_id, source, category, award_type, funding_org,
			nominee_count, monetary_total, hours_total, record, archived_at
		) VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)`, append([]interface{}{a.table}, binds...)...)

	_, err = a.db.ExecContext(ctx, query,
		rec.ID,
		rec.Source,
		string(rec.Category),
		string(rec.AwardType),
		rec.FundingOrg,
		len(rec.Nominees()),
		monetary,
		hours,
		string(body),
		archivedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.ID, err)
	}
	return nil
}

// MemoryArchive backs validate and dry runs. It can be seeded with ids
// issued elsewhere.
type MemoryArchive struct {
	mu      sync.RWMutex
	records map[string]*models.AwardRecord
}

func NewMemoryArchive(seed ...string) *MemoryArchive {
	m := &MemoryArchive{records: make(map[string]*models.AwardRecord)}
	for _, id := range seed {
		m.records[id] = nil
	}
	return m
}

func (m *MemoryArchive) Exists(_ context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[id]
	return ok, nil
}

func (m *MemoryArchive) Insert(_ context.Context, rec *models.AwardRecord, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyArchived, rec.ID)
	}
	m.records[rec.ID] = rec
	return nil
}

// IDs returns the archived ids in order.
func (m *MemoryArchive) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
