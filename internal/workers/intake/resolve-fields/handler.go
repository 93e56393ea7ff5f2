// internal/workers/intake/resolve-fields/handler.go
package resolvefields

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/formatting"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"
	"github.com/cinematicsodium/awards/pkg/registry"
)

const (
	TaskType = "resolve-fields"
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
	fields := input.Fields
	region, roles := models.RegionAll, individualRoles
	if input.Variant.Category() == models.CategoryGRP {
		region, roles = models.RegionOuter, groupRoles
	}
	values := fields.Region(region)

	rev := h.registry.DetectRevision(func(key string) bool {
		_, ok := values[key]
		return ok
	})

	out := &Output{
		Revision:  rev.Name,
		External:  rev.External,
		Fields:    make(map[registry.FieldRole]string),
		AwardType: models.AwardTypeUnresolved,
	}

	for _, role := range roles {
		v, err := h.resolve(rev, role, values)
		if err != nil {
			return nil, err
		}
		if v == "" {
			v = rev.Defaults[role]
		}
		if v != "" {
			out.Fields[role] = v
		}
	}

	if rev.External {
		out.FundingOrg = h.config.ExternalAgency
	}

	if input.Variant.Category() == models.CategoryIND {
		if err := h.resolveAmounts(rev, values, out); err != nil {
			return nil, err
		}
	}

	ratings := ratingFields(fields, input.Variant)
	out.Value, out.ValueSelections = resolveChoice[models.Value](ratings, h.registry.ValueOptions, h.config.CheckedValue)
	out.Extent, out.ExtentSelections = resolveChoice[models.Extent](ratings, h.registry.ExtentOptions, h.config.CheckedValue)

	h.logger.Debug("fields resolved", map[string]interface{}{
		"revision": rev.Name,
		"variant":  string(input.Variant),
		"resolved": len(out.Fields),
		"value":    string(out.Value),
		"extent":   string(out.Extent),
	})

	return out, nil
}

// resolve returns the value of role. The first valid candidate wins, but a
// later candidate holding a different value is a conflict.
func (h *Handler) resolve(rev *registry.Revision, role registry.FieldRole, values map[string]string) (string, error) {
	rule, ok := h.registry.Rule(rev, role)
	if !ok {
		return "", nil
	}

	var chosen, chosenKey string
	for _, key := range rule.Keys {
		raw, ok := values[key]
		if !ok || !models.IsValidField(raw) {
			continue
		}
		v := formatting.Clean(raw)
		switch {
		case chosen == "":
			chosen, chosenKey = v, key
		case rule.Longest:
			if len(v) > len(chosen) {
				chosen, chosenKey = v, key
			}
		case !strings.EqualFold(v, chosen):
			return "", apperrors.NewAmbiguousFieldError(string(role), fmt.Sprintf(
				"conflicting values for %s: %q (%s) and %q (%s)", role, chosen, chosenKey, v, key)).
				WithMetadata("keys", []string{chosenKey, key})
		}
	}
	return chosen, nil
}

func (h *Handler) amount(rev *registry.Revision, role registry.FieldRole, values map[string]string) (int, error) {
	v, err := h.resolve(rev, role, values)
	if err != nil || v == "" {
		return 0, err
	}
	n, err := formatting.ExtractAmount(v)
	switch {
	case errors.Is(err, formatting.ErrNoNumber):
		return 0, nil
	case err != nil:
		return 0, apperrors.NewAmbiguousFieldError(string(role), err.Error())
	}
	return n, nil
}

// resolveAmounts applies the max-of-nonzero rule to the SAS and OTS pairs.
func (h *Handler) resolveAmounts(rev *registry.Revision, values map[string]string, out *Output) error {
	var err error
	a := &out.Amounts
	if a.SASMonetary, err = h.amount(rev, registry.RoleSASMonetary, values); err != nil {
		return err
	}
	if a.OTSMonetary, err = h.amount(rev, registry.RoleOTSMonetary, values); err != nil {
		return err
	}

	if rule, ok := h.registry.Rule(rev, registry.RoleSharedHours); ok && len(rule.Keys) > 0 {
		shared, err := h.amount(rev, registry.RoleSharedHours, values)
		if err != nil {
			return err
		}
		checkbox, err := h.resolve(rev, registry.RoleOTSCheckbox, values)
		if err != nil {
			return err
		}
		if checkbox != "" || a.OTSMonetary > 0 {
			a.OTSHours = shared
		} else {
			a.SASHours = shared
		}
	} else {
		if a.SASHours, err = h.amount(rev, registry.RoleSASHours, values); err != nil {
			return err
		}
		if a.OTSHours, err = h.amount(rev, registry.RoleOTSHours, values); err != nil {
			return err
		}
	}

	if a.SASMonetary > 0 && a.OTSMonetary > 0 {
		return apperrors.NewAmbiguousFieldError("monetary", "multiple monetary values found").
			WithMetadata("sas", a.SASMonetary).
			WithMetadata("ots", a.OTSMonetary)
	}
	if a.SASHours > 0 && a.OTSHours > 0 {
		return apperrors.NewAmbiguousFieldError("hours", "multiple hours values found").
			WithMetadata("sas", a.SASHours).
			WithMetadata("ots", a.OTSHours)
	}

	out.Monetary = max(a.SASMonetary, a.OTSMonetary)
	out.Hours = max(a.SASHours, a.OTSHours)

	switch {
	case a.SASMonetary > 0 || a.SASHours > 0:
		out.AwardType = models.AwardTypeSAS
	case a.OTSMonetary > 0 || a.OTSHours > 0:
		out.AwardType = models.AwardTypeOTS
	}
	return nil
}

// ratingFields returns where the value and extent checkboxes live. Group
// forms keep them on the last page; individual forms may carry them on
// either page.
func ratingFields(fields models.RawFieldMap, variant models.FormVariant) map[string]string {
	if variant.Category() == models.CategoryIND {
		return fields.Region(models.RegionAll)
	}
	return fields.LastPage
}

// resolveChoice returns the single ticked option, or "unresolved" when none
// or several are ticked, together with every ticked option.
func resolveChoice[T ~string](fields map[string]string, options []string, checked string) (T, []string) {
	var ticked []string
	for _, opt := range options {
		if strings.EqualFold(strings.TrimSpace(fields[opt]), checked) {
			ticked = append(ticked, opt)
		}
	}
	if len(ticked) != 1 {
		return T("unresolved"), ticked
	}
	return T(ticked[0]), ticked
}
