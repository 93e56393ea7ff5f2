// internal/workers/intake/classify-form/handler_test.go
package classifyform

import (
	"context"
	"testing"

	apperrors "github.com/cinematicsodium/awards/internal/common/errors"
	"github.com/cinematicsodium/awards/internal/common/logger"
	"github.com/cinematicsodium/awards/internal/models"
	"github.com/cinematicsodium/awards/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type testLogger struct {
	t *testing.T
}

func (tl *testLogger) Debug(msg string, fields map[string]interface{}) {
	tl.t.Logf("DEBUG: %s %v", msg, fields)
}

func (tl *testLogger) Info(msg string, fields map[string]interface{}) {
	tl.t.Logf("INFO: %s %v", msg, fields)
}

func (tl *testLogger) Warn(msg string, fields map[string]interface{}) {
	tl.t.Logf("WARN: %s %v", msg, fields)
}

func (tl *testLogger) Error(msg string, fields map[string]interface{}) {
	tl.t.Logf("ERROR: %s %v", msg, fields)
}

func (tl *testLogger) WithFields(fields map[string]interface{}) logger.Logger {
	return tl
}

func (tl *testLogger) WithError(err error) logger.Logger {
	return tl.WithFields(map[string]interface{}{"error": err})
}

func (tl *testLogger) With(fields map[string]interface{}) logger.Logger {
	return tl
}

func newTestHandler(t *testing.T) *Handler {
	return NewHandler(LoadConfig(), registry.Default(), &testLogger{t: t})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_PageCounts(t *testing.T) {
	tests := []struct {
		pageCount int
		variant   models.FormVariant
		category  models.Category
	}{
		{2, models.VariantIND, models.CategoryIND},
		{3, models.VariantGRPMax7, models.CategoryGRP},
		{4, models.VariantGRPMax14, models.CategoryGRP},
		{5, models.VariantGRPMax21, models.CategoryGRP},
	}

	h := newTestHandler(t)
	for _, tt := range tests {
		t.Run(string(tt.variant), func(t *testing.T) {
			out, err := h.Execute(context.Background(), &Input{PageCount: tt.pageCount, ValidFieldCount: 25})
			require.NoError(t, err)
			assert.Equal(t, tt.variant, out.Variant)
			assert.Equal(t, tt.category, out.Category)
		})
	}
}

func TestHandler_Execute_UnsupportedPageCount(t *testing.T) {
	h := newTestHandler(t)
	for _, pages := range []int{0, 1, 6, 12} {
		_, err := h.Execute(context.Background(), &Input{PageCount: pages, ValidFieldCount: 25})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfiguration))
		assert.Contains(t, err.Error(), "unsupported page count")
	}
}

func TestHandler_Execute_InsufficientFields(t *testing.T) {
	h := newTestHandler(t)
	_, err := h.Execute(context.Background(), &Input{PageCount: 2, ValidFieldCount: 10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient fields")
}

func TestHandler_Execute_FieldSetShape(t *testing.T) {
	h := newTestHandler(t)

	t.Run("seven-slot form with 21-slot keys", func(t *testing.T) {
		_, err := h.Execute(context.Background(), &Input{
			PageCount:       3,
			ValidFieldCount: 25,
			Keys:            []string{"employee name_1", "employee name_2", "employee name_12"},
		})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeConfiguration))
		assert.Contains(t, err.Error(), "employee name_1, employee name_12")
	})

	t.Run("fourteen-slot form with its own keys", func(t *testing.T) {
		out, err := h.Execute(context.Background(), &Input{
			PageCount:       4,
			ValidFieldCount: 25,
			Keys:            []string{"employee name_2", "employee name_15", "award amount_14"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.VariantGRPMax14, out.Variant)
	})

	t.Run("twenty-one-slot form accepts every nominee key", func(t *testing.T) {
		out, err := h.Execute(context.Background(), &Input{
			PageCount:       5,
			ValidFieldCount: 25,
			Keys:            []string{"employee name_1", "employee name_21"},
		})
		require.NoError(t, err)
		assert.Equal(t, models.VariantGRPMax21, out.Variant)
	})
}
