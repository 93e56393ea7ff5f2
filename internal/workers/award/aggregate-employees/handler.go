// internal/workers/award/aggregate-employees/handler.go
package aggregateemployees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/formatting"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"
	normalizename "github.com/cinematicsodium/awards/internal/workers/normalize/normalize-name"
	"github.com/cinematicsodium/awards/pkg/registry"
)

const (
	TaskType = "aggregate-employees"
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
	if input.Variant.Category() == models.CategoryIND {
		return h.individual(ctx, input)
	}
	return h.group(ctx, input)
}

func (h *Handler) individual(_ context.Context, input *Input) (*Output, error) {
	ind := input.Individual
	if ind == nil || !h.present(ind.Name) {
		return nil, apperrors.NewRequiredFieldMissingError("nominee name")
	}

	name, err := h.name("nominee_name", ind.Name)
	if err != nil {
		return nil, err
	}

	code, raw := h.CanonicalPayPlan(ind.PayPlan)
	for _, plan := range h.config.IneligiblePayPlans {
		if code == plan {
			return nil, apperrors.NewComplianceError(
				fmt.Sprintf("%s pay plan not eligible", plan),
				fmt.Sprintf("%s is on the %s pay plan, which is not eligible for individual awards.", name, plan)).
				WithMetadata("payPlan", raw)
		}
	}

	if input.NominatorName != "" {
		if nominator := normalizename.Normalize(input.NominatorName); nominator.Resolved() && strings.EqualFold(nominator.Name, name) {
			return nil, apperrors.NewAmbiguousFieldError("nominator_name",
				fmt.Sprintf("nominator and nominee are the same person: %s", name))
		}
	}

	employee := &models.Employee{
		Name:           name,
		Organization:   formatting.Clean(ind.Organization),
		PayPlan:        code,
		PayPlanRaw:     raw,
		SupervisorName: h.bestEffortName(ind.SupervisorName),
		MonetaryAmount: ind.Monetary,
		HoursAmount:    ind.Hours,
	}

	awardType := ind.AwardType
	if awardType != models.AwardTypeSAS && awardType != models.AwardTypeOTS {
		awardType = models.AwardTypeSAS
		employee.MonetaryAmount, employee.HoursAmount = 0, 0
	}

	return &Output{AwardType: awardType, Employee: employee}, nil
}

type slotResult struct {
	position int
	employee models.Employee
}

func (h *Handler) group(_ context.Context, input *Input) (*Output, error) {
	tmpl, ok := h.registry.Template(string(input.Variant))
	if !ok {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("no aggregation template for variant %s", input.Variant))
	}

	rows := input.Fields.MidPages
	var detected, valid []slotResult
	for i, slot := range tmpl.Slots {
		rawName := rows[slot.Name]
		if !h.present(rawName) {
			continue
		}

		monetary, err := h.amount(slot.Monetary, rows[slot.Monetary])
		if err != nil {
			return nil, err
		}
		hours, err := h.amount(slot.Hours, rows[slot.Hours])
		if err != nil {
			return nil, err
		}
		if tmpl.IsPlaceholder(i) && monetary == 0 && hours == 0 {
			continue
		}

		name, err := h.name(slot.Name, rawName)
		if err != nil {
			return nil, err
		}

		code, raw := h.CanonicalPayPlan(rows[slot.PayPlan])
		res := slotResult{
			position: i + 1,
			employee: models.Employee{
				Name:           name,
				Organization:   h.text(rows[slot.Organization]),
				PayPlan:        code,
				PayPlanRaw:     raw,
				SupervisorName: h.bestEffortName(rows[slot.Supervisor]),
				MonetaryAmount: monetary,
				HoursAmount:    hours,
			},
		}
		detected = append(detected, res)
		if res.employee.HasAward() {
			valid = append(valid, res)
		}
	}

	if len(detected) == 0 {
		return nil, apperrors.NewConfigurationError("no nominees detected")
	}

	if len(detected) > len(valid) {
		var missing []string
		for _, d := range detected {
			if !d.employee.HasAward() {
				missing = append(missing, d.employee.Name)
			}
		}
		return nil, apperrors.NewDuplicateOrIncompleteError(
			fmt.Sprintf("%d of %d nominees have no award amount: %s",
				len(missing), len(detected), strings.Join(missing, "; ")), missing)
	}

	if dups := duplicateNames(valid); len(dups) > 0 {
		return nil, apperrors.NewDuplicateOrIncompleteError(
			fmt.Sprintf("duplicate nominee names: %s", strings.Join(dups, "; ")), dups)
	}

	employees := make([]models.Employee, len(valid))
	for i, v := range valid {
		employees[i] = v.employee
	}

	h.logger.Debug("group nominees aggregated", map[string]interface{}{
		"variant":   string(input.Variant),
		"nominees":  len(employees),
		"templated": len(tmpl.Slots),
	})

	return &Output{AwardType: models.AwardTypeSAS, Employees: employees}, nil
}

// CanonicalPayPlan returns the recognized pay-plan code for raw, or "-",
// together with the cleaned raw text.
func (h *Handler) CanonicalPayPlan(raw string) (string, string) {
	cleaned := h.text(raw)
	upper := strings.ToUpper(cleaned)
	for _, code := range h.registry.PayPlans {
		if strings.HasPrefix(upper, strings.ToUpper(code)) {
			return code, cleaned
		}
	}
	return UnrecognizedPayPlan, cleaned
}

// present reports whether v carries data that is not the blank marker.
func (h *Handler) present(v string) bool {
	return models.IsValidField(v) && !h.isBlankMarker(v)
}

func (h *Handler) isBlankMarker(v string) bool {
	return h.config.BlankMarker != "" &&
		strings.Contains(strings.ToLower(v), strings.ToLower(h.config.BlankMarker))
}

func (h *Handler) text(v string) string {
	if !h.present(v) {
		return ""
	}
	return formatting.Clean(v)
}

func (h *Handler) amount(key, v string) (int, error) {
	if !h.present(v) {
		return 0, nil
	}
	n, err := formatting.ExtractAmount(v)
	switch {
	case errors.Is(err, formatting.ErrNoNumber):
		return 0, nil
	case err != nil:
		return 0, apperrors.NewAmbiguousFieldError(key, err.Error())
	}
	return n, nil
}

func (h *Handler) name(field, raw string) (string, error) {
	res := normalizename.Normalize(raw)
	if !res.Resolved() {
		return "", apperrors.NewAmbiguousFieldError(field,
			fmt.Sprintf("name %q could not be parsed: %s", res.Original, res.Reason)).
			WithMetadata("original", res.Original).
			WithMetadata("kind", string(res.Kind))
	}
	return res.Name, nil
}

// bestEffortName normalizes a name that is informational only; text that
// does not parse is kept as written.
func (h *Handler) bestEffortName(raw string) string {
	if !h.present(raw) {
		return ""
	}
	if res := normalizename.Normalize(raw); res.Resolved() {
		return res.Name
	}
	return formatting.Clean(raw)
}

func duplicateNames(slots []slotResult) []string {
	seen := make(map[string]bool, len(slots))
	reported := make(map[string]bool)
	var dups []string
	for _, s := range slots {
		key := strings.ToLower(s.employee.Name)
		if seen[key] && !reported[key] {
			dups = append(dups, s.employee.Name)
			reported[key] = true
		}
		seen[key] = true
	}
	return dups
}
