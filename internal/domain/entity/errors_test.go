package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorsMatching(t *testing.T) {
	wrapped := fmt.Errorf("get inspection: %w", ErrNotFound)
	require.ErrorIs(t, wrapped, ErrNotFound)

	var vErr *ValidationError
	err := fmt.Errorf("upload: %w", NewValidationError("empty search query"))
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "empty search query", vErr.Reason)

	var dErr *DecodeError
	err = fmt.Errorf("analyze: %w", &DecodeError{Err: errors.New("bad bytes")})
	require.ErrorAs(t, err, &dErr)

	var sErr *StorageError
	err = &StorageError{Op: "insert inspection", Err: errors.New("disk full")}
	require.ErrorAs(t, err, &sErr)
	require.Contains(t, err.Error(), "insert inspection")
}
