package csvio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateHeaderComplete(t *testing.T) {
	report := ValidateHeader([]string{"title", "calendar_date", "time_slot", "target_platforms"})
	require.True(t, report.Valid)
	require.Empty(t, report.Missing)
	require.Empty(t, report.Extra)
}

func TestValidateHeaderMissingRequired(t *testing.T) {
	report := ValidateHeader([]string{"title", "calendar_date"})
	require.False(t, report.Valid)
	require.Equal(t, []string{"time_slot", "target_platforms"}, report.Missing)
}

func TestValidateHeaderExtraTolerated(t *testing.T) {
	report := ValidateHeader([]string{"title", "calendar_date", "time_slot", "target_platforms", "internal_notes"})
	require.True(t, report.Valid)
	require.Equal(t, []string{"internal_notes"}, report.Extra)
}

func TestValidateHeaderNormalizesNames(t *testing.T) {
	report := ValidateHeader([]string{" Title ", "Calendar-Date", "Time Slot", "TARGET_PLATFORMS"})
	require.True(t, report.Valid)
	require.Empty(t, report.Missing)
	require.Empty(t, report.Extra)
}

func TestValidateHeaderEmpty(t *testing.T) {
	report := ValidateHeader(nil)
	require.False(t, report.Valid)
	require.Len(t, report.Missing, 4)
}
