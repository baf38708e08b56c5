package diagnosis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bloodcell/internal/domain/entity"
)

func TestEngine_Diagnose(t *testing.T) {
	engine := NewEngine(DefaultThresholds())

	tests := []struct {
		name                string
		wbc, rbc, platelets int
		want                []string
	}{
		{"high wbc only", 12, 5000, 200, []string{ConditionHighWBC}},
		{"all low", 2, 4000, 100, []string{ConditionLowWBC, ConditionLowRBC, ConditionLowPlt}},
		{"normal", 8, 5000, 200, []string{NoAbnormalities}},
		{"wbc bounds are strict", 11, 4700, 150, []string{NoAbnormalities}},
		{"wbc lower bound is strict", 4, 4700, 150, []string{NoAbnormalities}},
		{"zero counts", 0, 0, 0, []string{ConditionLowWBC, ConditionLowRBC, ConditionLowPlt}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, engine.Diagnose(tt.wbc, tt.rbc, tt.platelets))
		})
	}
}

func TestEngine_CustomThresholds(t *testing.T) {
	engine := NewEngine(Thresholds{WBCHigh: 20, WBCLow: 1, RBCLow: 10, PlateletLow: 1})
	require.Equal(t, []string{NoAbnormalities}, engine.Diagnose(12, 5000, 200))
	require.Equal(t, []string{ConditionHighWBC}, engine.Diagnose(21, 10, 1))
}

func TestEngine_DiagnoseCounts(t *testing.T) {
	engine := NewEngine(DefaultThresholds())
	counts := entity.Summarize(nil).Counts
	require.Equal(t, []string{ConditionLowWBC, ConditionLowRBC, ConditionLowPlt}, engine.DiagnoseCounts(counts))
}

func TestThresholds_Validate(t *testing.T) {
	require.NoError(t, DefaultThresholds().Validate())
	require.Error(t, Thresholds{WBCHigh: 3, WBCLow: 5}.Validate())
	require.Error(t, Thresholds{WBCHigh: 3, WBCLow: 1, RBCLow: -1}.Validate())
}
