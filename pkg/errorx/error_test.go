package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	sentinel := New(RaffleNotOpen, "Raffle is not open")

	err := New(RaffleNotOpen, "Raffle is %s", "CALCULATING")
	require.ErrorIs(t, err, sentinel)
	require.Equal(t, "Raffle is CALCULATING", err.Error())

	wrapped := fmt.Errorf("enter: %w", err)
	require.ErrorIs(t, wrapped, sentinel)
	require.False(t, errors.Is(wrapped, New(InsufficientPayment, "")))

	var errx Error
	require.True(t, errors.As(wrapped, &errx))
	require.Equal(t, int(RaffleNotOpen), errx.ErrorCode())
}
