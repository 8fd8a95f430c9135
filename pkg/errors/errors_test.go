package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/cosmo-lgtm/ops-command-center/pkg/errors"
)

func TestConfigError(t *testing.T) {
	t.Run("with component", func(t *testing.T) {
		err := pkgerrors.NewConfigError("blocker", "average block size 9000 exceeds ceiling 5000", nil)
		assert.Equal(t, "configuration error in blocker: average block size 9000 exceeds ceiling 5000", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrConfig))
		assert.True(t, pkgerrors.IsConfigError(err))
	})

	t.Run("without component", func(t *testing.T) {
		err := &pkgerrors.ConfigError{Message: "bad threshold"}
		assert.Equal(t, "configuration error: bad threshold", err.Error())
	})

	t.Run("unwraps cause", func(t *testing.T) {
		cause := errors.New("boom")
		err := pkgerrors.NewConfigError("normalizer", "unknown rule", cause)
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("wrapped stays detectable", func(t *testing.T) {
		err := fmt.Errorf("run failed: %w", pkgerrors.NewConfigError("reconcile", "x", nil))
		assert.True(t, pkgerrors.IsConfigError(err))
	})
}

func TestDataError(t *testing.T) {
	t.Run("with key", func(t *testing.T) {
		err := pkgerrors.NewDataError("A", "sku-7", "unparseable timestamp")
		assert.Equal(t, "data error on side A for record sku-7: unparseable timestamp", err.Error())
		assert.True(t, pkgerrors.IsDataError(err))
	})

	t.Run("side only", func(t *testing.T) {
		err := pkgerrors.NewDataError("B", "", "empty batch")
		assert.Equal(t, "data error on side B: empty batch", err.Error())
	})

	t.Run("distinct from config error", func(t *testing.T) {
		err := pkgerrors.NewDataError("A", "k", "x")
		assert.False(t, pkgerrors.IsConfigError(err))
	})
}

func TestValidationError(t *testing.T) {
	err := pkgerrors.NewValidationError("workers", 0, "must be at least 1")
	assert.Contains(t, err.Error(), "workers")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	assert.True(t, pkgerrors.IsValidationError(err))
}

func TestIsCanceled(t *testing.T) {
	err := fmt.Errorf("run canceled during scoring: %w", pkgerrors.ErrCanceled)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.False(t, pkgerrors.IsCanceled(errors.New("other")))
}

func TestWrapConfig(t *testing.T) {
	assert.Nil(t, pkgerrors.WrapConfig("c", nil))

	wrapped := pkgerrors.WrapConfig("ingest", errors.New("missing column"))
	assert.True(t, pkgerrors.IsConfigError(wrapped))
	assert.Contains(t, wrapped.Error(), "missing column")
}
