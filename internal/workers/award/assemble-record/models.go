// internal/workers/award/assemble-record/models.go
package assemblerecord

import (
	"github.com/cinematicsodium/awards/internal/models"
	allocateid "github.com/cinematicsodium/awards/internal/workers/award/allocate-id"
)

type Input struct {
	Fields models.RawFieldMap `json:"fields"`
	// Counter is read, never advanced: the caller commits the allocation
	// after the record is archived.
	Counter models.SerialCounter `json:"counter"`
}

type Output struct {
	Record *models.AwardRecord `json:"record"`
	// Allocation is set for valid records only.
	Allocation *allocateid.Allocation `json:"allocation,omitempty"`
}

// Stages names the pipeline steps for timing metrics.
const (
	StageClassify  = "classify"
	StageResolve   = "resolve"
	StageAggregate = "aggregate"
	StageEvaluate  = "evaluate"
	StageAllocate  = "allocate"
)
