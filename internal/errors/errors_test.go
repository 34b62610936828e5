package errors

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclarationErrorIsInvalidDeclaration(t *testing.T) {
	err := fmt.Errorf("declare: %w", NewDeclarationError("Assets/a.png", "explicit grouping requires a group"))
	assert.True(t, Is(err, ErrInvalidDeclaration))

	var de *DeclarationError
	require.True(t, As(err, &de))
	assert.Equal(t, "Assets/a.png", de.Asset)
	assert.Contains(t, err.Error(), "Assets/a.png")
}

func TestOracleErrorUnwrapsBothWays(t *testing.T) {
	cause := New("disk on fire")
	err := NewOracleError("ui.bundle", cause)

	assert.True(t, Is(err, ErrOracleFailure))
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "ui.bundle")
}

func TestCancelledErrorCarriesContextCause(t *testing.T) {
	err := &CancelledError{Phase: "walk", At: "_title", Done: 1, Total: 3, Cause: context.Canceled}

	assert.True(t, Is(err, ErrCancelled))
	assert.True(t, Is(err, context.Canceled))
	assert.Equal(t, `analysis cancelled during walk at "_title" (1/3): context canceled`, err.Error())

	plain := &CancelledError{Phase: "promote", At: "x", Done: 0, Total: 1}
	assert.True(t, Is(plain, ErrCancelled))
	assert.False(t, Is(plain, context.Canceled))
}
