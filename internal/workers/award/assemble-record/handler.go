// internal/workers/award/assemble-record/handler.go
package assemblerecord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/formatting"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"
	aggregateemployees "github.com/cinematicsodium/awards/internal/workers/award/aggregate-employees"
	allocateid "github.com/cinematicsodium/awards/internal/workers/award/allocate-id"
	evaluatecompensation "github.com/cinematicsodium/awards/internal/workers/award/evaluate-compensation"
	classifyform "github.com/cinematicsodium/awards/internal/workers/intake/classify-form"
	resolvefields "github.com/cinematicsodium/awards/internal/workers/intake/resolve-fields"
	matchorganization "github.com/cinematicsodium/awards/internal/workers/normalize/match-organization"
	normalizename "github.com/cinematicsodium/awards/internal/workers/normalize/normalize-name"
	"github.com/cinematicsodium/awards/pkg/registry"
)

const (
	TaskType = "assemble-record"
)

// Workers are the pipeline stages the assembler drives.
type Workers struct {
	Classifier    *classifyform.Handler
	Resolver      *resolvefields.Handler
	Organizations *matchorganization.Handler
	Aggregator    *aggregateemployees.Handler
	Evaluator     *evaluatecompensation.Handler
	Allocator     *allocateid.Handler
}

// StageObserver receives the duration of every pipeline stage.
type StageObserver func(stage string, d time.Duration)

type Handler struct {
	config   *Config
	workers  Workers
	registry *registry.FieldRegistry
	errors   *apperrors.SubmissionErrorHandler
	clock    func() time.Time
	observe  StageObserver
	logger   logger.Logger
}

type Option func(*Handler)

// WithClock replaces time.Now for date-received defaults and the fiscal year.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) { h.clock = clock }
}

func WithStageObserver(observe StageObserver) Option {
	return func(h *Handler) { h.observe = observe }
}

func NewHandler(config *Config, workers Workers, reg *registry.FieldRegistry, log logger.Logger, opts ...Option) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	h := &Handler{
		config:   config,
		workers:  workers,
		registry: reg,
		errors:   apperrors.NewSubmissionErrorHandler(scoped),
		clock:    time.Now,
		observe:  func(string, time.Duration) {},
		logger:   scoped,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute never fails for a bad submission: the record comes back REJECTED
// with its rejection attached. Only a cancelled context is returned as an
// error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := input.Fields.Normalized()
	record := &models.AwardRecord{
		Source:    fields.Source,
		AwardType: models.AwardTypeUnresolved,
		Value:     models.ValueUnresolved,
		Extent:    models.ExtentUnresolved,
	}

	alloc, err := h.assemble(ctx, fields, input.Counter, record)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		record.ID = ""
		record.Status = models.StatusRejected
		record.Rejection = h.errors.Handle(fields.Source, err)
		return &Output{Record: record}, nil
	}

	record.ID = alloc.ID
	record.Status = models.StatusValid
	h.logger.Info("record assembled", map[string]interface{}{
		"source":   fields.Source,
		"id":       record.ID,
		"category": string(record.Category),
		"nominees": len(record.Nominees()),
	})
	return &Output{Record: record, Allocation: &alloc}, nil
}

func (h *Handler) stage(name string, fn func() error) error {
	start := h.clock()
	err := fn()
	h.observe(name, h.clock().Sub(start))
	return err
}

func (h *Handler) assemble(ctx context.Context, fields models.RawFieldMap, counter models.SerialCounter, record *models.AwardRecord) (allocateid.Allocation, error) {
	var classified *classifyform.Output
	err := h.stage(StageClassify, func() (err error) {
		classified, err = h.workers.Classifier.Execute(ctx, &classifyform.Input{
			PageCount:       fields.PageCount,
			Keys:            fields.Keys(models.RegionAll),
			ValidFieldCount: fields.ValidFieldCount(),
		})
		return err
	})
	if err != nil {
		return allocateid.Allocation{}, err
	}
	record.Variant = classified.Variant
	record.Category = classified.Category

	var resolved *resolvefields.Output
	err = h.stage(StageResolve, func() (err error) {
		resolved, err = h.workers.Resolver.Execute(ctx, &resolvefields.Input{Fields: fields, Variant: classified.Variant})
		return err
	})
	if err != nil {
		return allocateid.Allocation{}, err
	}
	h.applyResolved(fields, resolved, record)

	if err := h.resolveFunding(ctx, resolved, record); err != nil {
		return allocateid.Allocation{}, err
	}

	var aggregated *aggregateemployees.Output
	err = h.stage(StageAggregate, func() (err error) {
		aggregated, err = h.workers.Aggregator.Execute(ctx, h.aggregateInput(fields, classified.Variant, resolved))
		return err
	})
	if err != nil {
		return allocateid.Allocation{}, err
	}
	record.AwardType = aggregated.AwardType
	record.Employee = aggregated.Employee
	record.Employees = aggregated.Employees
	if aggregated.Employee != nil {
		record.SupervisorName = aggregated.Employee.SupervisorName
	}

	if err := validateRatings(resolved); err != nil {
		return allocateid.Allocation{}, err
	}
	if err := h.checkMonetaryHold(record); err != nil {
		return allocateid.Allocation{}, err
	}
	err = h.stage(StageEvaluate, func() error {
		_, err := h.workers.Evaluator.Execute(ctx, &evaluatecompensation.Input{
			Category:  record.Category,
			Value:     record.Value,
			Extent:    record.Extent,
			Employees: record.Nominees(),
		})
		return err
	})
	if err != nil {
		return allocateid.Allocation{}, err
	}

	if err := validateRequired(record); err != nil {
		return allocateid.Allocation{}, err
	}

	var alloc allocateid.Allocation
	err = h.stage(StageAllocate, func() (err error) {
		alloc, err = h.workers.Allocator.Allocate(ctx, counter, record.Category, h.fiscalYear())
		return err
	})
	return alloc, err
}

func (h *Handler) applyResolved(fields models.RawFieldMap, resolved *resolvefields.Output, record *models.AwardRecord) {
	record.Value = resolved.Value
	record.Extent = resolved.Extent
	record.GroupName = resolved.Field(registry.RoleGroupName)
	record.NominatorName = personName(resolved.Field(registry.RoleNominatorName))
	record.CertifierName = personName(resolved.Field(registry.RoleCertifierName))
	record.ApproverName = personName(resolved.Field(registry.RoleApproverName))
	record.FundingString = resolved.Field(registry.RoleFundingString)
	record.Justification, record.WordCount = formatting.Justification(resolved.Field(registry.RoleJustification))

	now := h.clock()
	date, err := formatting.ParseDate(resolved.Field(registry.RoleDateReceived), now)
	if err != nil {
		h.logger.Warn("unrecognized date received, using today", map[string]interface{}{
			"source": fields.Source,
			"error":  err.Error(),
		})
		date = now.Format("2006-01-02")
	}
	record.DateReceived = date
}

// resolveFunding sets the funding organization, its consultant and the
// management division. An external funding agency replaces the elected
// organization but the organization fields still decide the management
// division.
func (h *Handler) resolveFunding(ctx context.Context, resolved *resolvefields.Output, record *models.AwardRecord) error {
	var values []string
	for _, role := range h.registry.FundingOrgRoles {
		if v := resolved.Field(role); v != "" {
			values = append(values, v)
		}
	}
	out, err := h.workers.Organizations.Execute(ctx, &matchorganization.Input{Values: values})
	if err != nil {
		return err
	}
	record.MBDivision = out.ManagementDivision

	if resolved.FundingOrg != "" {
		record.FundingOrg = resolved.FundingOrg
	} else {
		record.FundingOrg = out.Match.Organization
		record.FundingDivision = out.Match.Division
	}

	record.Consultant = h.consultant(record.FundingOrg)
	if record.Consultant == "" && record.FundingOrg != "" {
		h.logger.Warn("no consultant for funding organization", map[string]interface{}{
			"source":     record.Source,
			"fundingOrg": record.FundingOrg,
		})
	}
	return nil
}

func (h *Handler) consultant(org string) string {
	if name, ok := h.config.Consultants[org]; ok {
		return name
	}
	key := matchorganization.NormalizeOrg(org)
	if key == "" {
		return ""
	}
	for k, name := range h.config.Consultants {
		if matchorganization.NormalizeOrg(k) == key {
			return name
		}
	}
	return ""
}

// checkMonetaryHold rejects any monetary amount while the hold is on.
func (h *Handler) checkMonetaryHold(record *models.AwardRecord) error {
	if !h.config.MonetaryHold {
		return nil
	}
	monetary, hours := record.Totals()
	if monetary == 0 {
		return nil
	}
	return apperrors.NewComplianceError(
		"unable to process monetary awards at this time",
		fmt.Sprintf("monetary amount: %d\ntime-off amount: %d", monetary, hours),
	).WithMetadata("monetary", monetary).WithMetadata("hours", hours)
}

func (h *Handler) aggregateInput(fields models.RawFieldMap, variant models.FormVariant, resolved *resolvefields.Output) *aggregateemployees.Input {
	input := &aggregateemployees.Input{
		Variant:       variant,
		Fields:        fields,
		NominatorName: resolved.Field(registry.RoleNominatorName),
	}
	if variant.Category() == models.CategoryIND {
		input.Individual = &aggregateemployees.Individual{
			Name:           resolved.Field(registry.RoleNomineeName),
			Organization:   resolved.Field(registry.RoleNomineeOrg),
			PayPlan:        resolved.Field(registry.RolePayPlan),
			SupervisorName: resolved.Field(registry.RoleSupervisorName),
			Monetary:       resolved.Monetary,
			Hours:          resolved.Hours,
			AwardType:      resolved.AwardType,
		}
	}
	return input
}

func (h *Handler) fiscalYear() string {
	if h.config.FiscalYearSuffix != "" {
		return h.config.FiscalYearSuffix
	}
	return models.FiscalYearSuffix(h.clock())
}

// validateRatings rejects a value or extent with no selection or several.
func validateRatings(resolved *resolvefields.Output) error {
	for _, c := range []struct {
		field    string
		resolved bool
		ticked   []string
	}{
		{"value", resolved.Value != models.ValueUnresolved, resolved.ValueSelections},
		{"extent", resolved.Extent != models.ExtentUnresolved, resolved.ExtentSelections},
	} {
		if c.resolved {
			continue
		}
		if len(c.ticked) == 0 {
			return apperrors.NewAmbiguousFieldError(c.field, fmt.Sprintf("no award %s selected", c.field))
		}
		return apperrors.NewAmbiguousFieldError(c.field, fmt.Sprintf(
			"multiple award %s options selected: %s", c.field, strings.Join(c.ticked, ", "))).
			WithMetadata("selected", c.ticked)
	}
	return nil
}

func validateRequired(record *models.AwardRecord) error {
	var missing []string
	if record.NominatorName == "" {
		missing = append(missing, "nominator name")
	}
	if record.FundingOrg == "" {
		missing = append(missing, "funding organization")
	}
	if record.Justification == "" {
		missing = append(missing, "justification")
	}
	if len(record.Nominees()) == 0 {
		missing = append(missing, "nominee")
	}
	if len(missing) > 0 {
		return apperrors.NewRequiredFieldMissingError(missing...)
	}
	return nil
}

// personName normalizes a signature-block name when it parses and keeps the
// written text otherwise.
func personName(raw string) string {
	if raw == "" {
		return ""
	}
	if res := normalizename.Normalize(raw); res.Resolved() {
		return res.Name
	}
	return raw
}
