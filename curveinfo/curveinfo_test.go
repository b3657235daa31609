package curveinfo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLookupByID(t *testing.T) {
	info, ok := LookupByID(BNP254ID)
	require.True(t, ok)
	require.Equal(t, "BN_P254", info.Name)
	require.Equal(t, StatusLegacy, info.Status)
}

func TestLookupByIDUnknown(t *testing.T) {
	_, ok := LookupByID(CurveID(0xFF))
	require.False(t, ok)
}

func TestLookupByName(t *testing.T) {
	info, ok := LookupByName("BLS12_P381")
	require.True(t, ok)
	require.Equal(t, BLS12P381ID, info.ID)
	require.Equal(t, StatusRecommended, info.Status)
}

func TestStringFallsBackToHexForUnknownID(t *testing.T) {
	require.Equal(t, "BN_P254", BNP254ID.String())
	require.Equal(t, "CurveID(0xFF)", CurveID(0xFF).String())
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "weak", StatusWeak.String())
	require.Equal(t, "recommended", StatusRecommended.String())
	require.Equal(t, "unknown", Status(99).String())
}
