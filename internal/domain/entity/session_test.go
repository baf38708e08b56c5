package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSession_DefaultState(t *testing.T) {
	s := NewSession(42)
	require.Equal(t, int64(42), s.ChatID)
	require.Equal(t, StateIdle, s.State)
	require.Nil(t, s.LastAnalysis)
	require.False(t, s.Busy())

	s.SetState(StateProcessing)
	require.True(t, s.Busy())
}
