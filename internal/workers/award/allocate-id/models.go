// internal/workers/award/allocate-id/models.go
package allocateid

import (
	"context"

	"github.com/cinematicsodium/awards/internal/models"
)

// Archive reports whether a log id has already been issued.
type Archive interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// CounterStore persists the committed serial counter of a fiscal year.
type CounterStore interface {
	Load(ctx context.Context, fiscalYear string) (models.SerialCounter, error)
	Save(ctx context.Context, fiscalYear string, counter models.SerialCounter) error
}

// Allocation is a tentatively chosen log id. It becomes durable only when
// the caller commits it after archiving the record.
type Allocation struct {
	ID         string          `json:"id"`
	FiscalYear string          `json:"fiscalYear"`
	Category   models.Category `json:"category"`
	Serial     int             `json:"serial"`
	Attempts   int             `json:"attempts"`
}

type Input struct {
	Counter    models.SerialCounter `json:"counter"`
	Category   models.Category      `json:"category"`
	FiscalYear string               `json:"fiscalYear"`
}

type Output struct {
	Allocation Allocation `json:"allocation"`
}
