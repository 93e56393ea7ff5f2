// internal/workers/infrastructure/archive-record/models.go
package archiverecord

import (
	"context"
	"time"

	"github.com/cinematicsodium/awards/internal/models"
)

// Store persists issued records. Exists is what the ID allocator probes.
type Store interface {
	Exists(ctx context.Context, id string) (bool, error)
	Insert(ctx context.Context, rec *models.AwardRecord, archivedAt time.Time) error
}

// Indexer publishes archived records for search.
type Indexer interface {
	Index(ctx context.Context, rec *models.AwardRecord) error
}

type Input struct {
	Record *models.AwardRecord `json:"record"`
}

type Output struct {
	ID         string    `json:"id"`
	ArchivedAt time.Time `json:"archivedAt"`
	Indexed    bool      `json:"indexed"`
}
