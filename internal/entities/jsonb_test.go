package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMissionRequirements_ValueScanRoundTrip(t *testing.T) {
	original := MissionRequirements{"expenses_logged": 3, "savings_logged": 1}

	v, err := original.Value()
	require.NoError(t, err)

	var scanned MissionRequirements
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, original, scanned)
}

func TestMissionRequirements_NilValueIsEmptyObject(t *testing.T) {
	var m MissionRequirements
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "{}", v)
}

func TestMissionProgress_ScanFromBytesAndString(t *testing.T) {
	var fromBytes MissionProgress
	require.NoError(t, fromBytes.Scan([]byte(`{"expenses_logged":2}`)))
	assert.Equal(t, 2, fromBytes["expenses_logged"])

	var fromString MissionProgress
	require.NoError(t, fromString.Scan(`{"expenses_logged":5}`))
	assert.Equal(t, 5, fromString["expenses_logged"])
}

func TestMissionProgress_ScanNilLeavesDestUntouched(t *testing.T) {
	progress := MissionProgress{"expenses_logged": 1}
	require.NoError(t, progress.Scan(nil))
	assert.Equal(t, 1, progress["expenses_logged"])
}

func TestMissionProgress_ScanUnsupportedType(t *testing.T) {
	var m MissionProgress
	err := m.Scan(42)
	assert.Error(t, err)
}

func TestAdventureScores_NilValueIsNilDriverValue(t *testing.T) {
	var s AdventureScores
	v, err := s.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestAdventureScores_ValueScanRoundTrip(t *testing.T) {
	original := AdventureScores{"budgeting": 0.8, "saving": 0.6}
	v, err := original.Value()
	require.NoError(t, err)

	var scanned AdventureScores
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, original, scanned)
}

func TestStringSlice_ValueScanRoundTrip(t *testing.T) {
	original := StringSlice{"Save the coins", "Spend it all", "Ask a parent"}
	v, err := original.Value()
	require.NoError(t, err)

	var scanned StringSlice
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, original, scanned)
}

func TestStringSlice_NilValueIsEmptyArray(t *testing.T) {
	var s StringSlice
	v, err := s.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}
