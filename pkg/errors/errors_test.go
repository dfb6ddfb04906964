package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := fmt.Errorf("unexpected token")
	err := NewParseError("settings.yaml", 12, underlying)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "settings.yaml", parseErr.Path)
	require.Equal(t, 12, parseErr.Line)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "settings.yaml:12")
}

func TestValidationErrorIncludesField(t *testing.T) {
	t.Parallel()

	err := NewValidationError("tenant.id", "is required", nil)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Equal(t, "tenant.id", validationErr.Field)
	require.Equal(t, "validation error: tenant.id: is required", err.Error())
}

func TestPrerequisiteErrorWrapsCause(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("401 unauthorized")
	err := NewPrerequisiteError("authentication", underlying)

	var prereqErr *PrerequisiteError
	require.ErrorAs(t, err, &prereqErr)
	require.Equal(t, "authentication", prereqErr.Check)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "prerequisite authentication failed")
}

func TestInvalidArgumentErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("copy: %w", NewInvalidArgumentError("value", "must not be nil"))

	require.ErrorIs(t, err, ErrInvalidArgument)
	var argErr *InvalidArgumentError
	require.ErrorAs(t, err, &argErr)
	require.Equal(t, "value", argErr.Argument)
}
