// internal/workers/intake/classify-form/handler.go
package classifyform

import (
	"context"
	"fmt"
	"sort"
	"strings"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"
	"github.com/cinematicsodium/awards/pkg/registry"
)

const (
	TaskType = "classify-form"
)

type Handler struct {
	config   *Config
	registry *registry.FieldRegistry
	logger   logger.Logger
}

func NewHandler(config *Config, reg *registry.FieldRegistry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		registry: reg,
		logger:   log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.ValidFieldCount <= h.config.MinFieldCount {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf(
			"insufficient fields: %d valid fields, more than %d required",
			input.ValidFieldCount, h.config.MinFieldCount))
	}

	variant, err := Classify(input.PageCount)
	if err != nil {
		return nil, err
	}

	if foreign := h.foreignSlotKeys(variant, input.Keys); len(foreign) > 0 {
		return nil, apperrors.NewConfigurationError(fmt.Sprintf(
			"field set does not match variant %s: unexpected nominee fields %s",
			variant, strings.Join(foreign, ", "))).
			WithMetadata("variant", string(variant))
	}

	h.logger.Debug("form classified", map[string]interface{}{
		"pageCount": input.PageCount,
		"variant":   string(variant),
	})

	return &Output{
		Variant:  variant,
		Category: variant.Category(),
	}, nil
}

// Classify maps a page count to its form variant.
func Classify(pageCount int) (models.FormVariant, error) {
	variant, ok := variantsByPageCount[pageCount]
	if !ok {
		return models.VariantUndefined, apperrors.NewConfigurationError(
			fmt.Sprintf("unsupported page count: %d", pageCount)).
			WithMetadata("pageCount", pageCount)
	}
	return variant, nil
}

// foreignSlotKeys returns nominee-name keys that belong to another group
// template but not to the variant's own template.
func (h *Handler) foreignSlotKeys(variant models.FormVariant, keys []string) []string {
	if variant == models.VariantIND || h.registry == nil {
		return nil
	}
	own, ok := h.registry.Template(string(variant))
	if !ok {
		return nil
	}

	ownNames := make(map[string]bool, len(own.Slots))
	for _, s := range own.Slots {
		ownNames[s.Name] = true
	}
	otherNames := make(map[string]bool)
	for name, tmpl := range h.registry.Templates {
		if name == string(variant) {
			continue
		}
		for _, s := range tmpl.Slots {
			if !ownNames[s.Name] {
				otherNames[s.Name] = true
			}
		}
	}

	var foreign []string
	for _, k := range keys {
		if otherNames[k] {
			foreign = append(foreign, k)
		}
	}
	sort.Strings(foreign)
	return foreign
}
