// internal/workers/award/evaluate-compensation/handler.go
package evaluatecompensation

import (
	"context"
	"fmt"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
)

const (
	TaskType = "evaluate-compensation"
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

// execute runs value/extent resolution, limit lookup, summing and the ratio
// check in a single pass.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	ml, hl, ok := Limits(input.Value, input.Extent)
	if !ok {
		h.logger.Debug("compensation check skipped", map[string]interface{}{
			"value":  string(input.Value),
			"extent": string(input.Extent),
		})
		return &Output{Skipped: true}, nil
	}

	out := &Output{MonetaryLimit: ml, HoursLimit: hl}
	for _, emp := range input.Employees {
		out.MonetarySum += emp.MonetaryAmount
		out.HoursSum += emp.HoursAmount
	}
	out.CombinedRatio = ratio(out.MonetarySum, ml) + ratio(out.HoursSum, hl)

	if out.MonetarySum == 0 && out.HoursSum == 0 {
		return nil, apperrors.NewRequiredFieldMissingError("award amount").
			WithMetadata("reason", "no award amount")
	}

	if exceedsLimit(out.MonetarySum, out.HoursSum, ml, hl) {
		report := NewReport(input.Category, input.Value, input.Extent, input.Employees, h.config.PolicyReference)

		h.logger.Info("award exceeds limit", map[string]interface{}{
			"value":         string(input.Value),
			"extent":        string(input.Extent),
			"monetarySum":   out.MonetarySum,
			"hoursSum":      out.HoursSum,
			"combinedRatio": out.CombinedRatio,
		})

		return nil, apperrors.NewComplianceError(
			fmt.Sprintf("award amounts exceed the %s x %s limit (%.2f%%)",
				input.Value.Title(), input.Extent.Title(), out.CombinedRatio*100),
			report.Render()).
			WithMetadata("report", report)
	}

	return out, nil
}

// exceedsLimit reports m/ml + h/hl > 1. Either sum alone over its limit
// decides it; below that the cross products stay within ml*hl*2.
func exceedsLimit(m, h, ml, hl int) bool {
	if m < 0 || h < 0 || m > ml || h > hl {
		return true
	}
	return m*hl+h*ml > ml*hl
}
