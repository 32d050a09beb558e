package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Dhoini/CRM-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapWriteError_Timeout(t *testing.T) {
	err := wrapWriteError(fmt.Errorf("write failed: %w", context.DeadlineExceeded))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTimeoutExceeded))
}

func TestWrapWriteError_Other(t *testing.T) {
	cause := errors.New("broker unavailable")
	err := wrapWriteError(cause)
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, domain.ErrTimeoutExceeded))
}
