package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value implements driver.Valuer so a MissionRequirements map can be
// written to a jsonb column.
func (m MissionRequirements) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner, reading a jsonb column back into a
// MissionRequirements map.
func (m *MissionRequirements) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// Value implements driver.Valuer so a MissionProgress map can be written
// to a jsonb column.
func (m MissionProgress) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner, reading a jsonb column back into a
// MissionProgress map.
func (m *MissionProgress) Scan(value interface{}) error {
	return scanJSON(value, m)
}

// Value implements driver.Valuer so AdventureScores can be written to a
// jsonb column.
func (s AdventureScores) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner, reading a jsonb column back into
// AdventureScores.
func (s *AdventureScores) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// StringSlice is a []string persisted as a jsonb column, used for
// Adventure.Choices.
type StringSlice []string

// Value implements driver.Valuer.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal([]string(s))
}

// Scan implements sql.Scanner.
func (s *StringSlice) Scan(value interface{}) error {
	return scanJSON(value, s)
}

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
}
