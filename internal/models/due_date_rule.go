// internal/models/due_date_rule.go
package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type DueDateRuleType string

const (
	DueDateRuleNone                 DueDateRuleType = ""
	DueDateRuleFixed                DueDateRuleType = "fixed"
	DueDateRuleRelativeToStart      DueDateRuleType = "relative_to_start"
	DueDateRuleRelativeToSubmission DueDateRuleType = "relative_to_submission"
)

// DueDateRule is a closed set: NoDueDate, FixedDueDate, RelativeToStart and
// RelativeToSubmission. A nil DueDateRule behaves like NoDueDate.
type DueDateRule interface {
	Type() DueDateRuleType
	dueDateRule()
}

type NoDueDate struct{}

// FixedDueDate holds the literal calendar date as authored (YYYY-MM-DD).
type FixedDueDate struct {
	Date string
}

type RelativeToStart struct {
	Days int
}

type RelativeToSubmission struct {
	Days int
}

func (NoDueDate) Type() DueDateRuleType            { return DueDateRuleNone }
func (FixedDueDate) Type() DueDateRuleType         { return DueDateRuleFixed }
func (RelativeToStart) Type() DueDateRuleType      { return DueDateRuleRelativeToStart }
func (RelativeToSubmission) Type() DueDateRuleType { return DueDateRuleRelativeToSubmission }

func (NoDueDate) dueDateRule()            {}
func (FixedDueDate) dueDateRule()         {}
func (RelativeToStart) dueDateRule()      {}
func (RelativeToSubmission) dueDateRule() {}

func Fixed(date string) DueDateRule {
	return FixedDueDate{Date: date}
}

func DaysAfterStart(days int) DueDateRule {
	return RelativeToStart{Days: days}
}

func DaysAfterSubmission(days int) DueDateRule {
	return RelativeToSubmission{Days: days}
}

// dueDateRuleJSON is the persisted and wire shape of a rule.
type dueDateRuleJSON struct {
	Type       DueDateRuleType `json:"type"`
	FixedDate  *string         `json:"fixed_date,omitempty"`
	DaysOffset *int            `json:"days_offset,omitempty"`
}

// DecodeDueDateRule converts the loose wire shape into a rule. Shapes that
// cannot form a valid rule (unknown type, relative rule without an offset,
// fixed rule without a date) decode as NoDueDate.
func DecodeDueDateRule(data []byte) (DueDateRule, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NoDueDate{}, nil
	}

	var raw dueDateRuleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return NoDueDate{}, fmt.Errorf("invalid due date rule: %w", err)
	}

	switch raw.Type {
	case DueDateRuleFixed:
		if raw.FixedDate == nil {
			return NoDueDate{}, nil
		}
		return FixedDueDate{Date: *raw.FixedDate}, nil
	case DueDateRuleRelativeToStart:
		if raw.DaysOffset == nil {
			return NoDueDate{}, nil
		}
		return RelativeToStart{Days: *raw.DaysOffset}, nil
	case DueDateRuleRelativeToSubmission:
		if raw.DaysOffset == nil {
			return NoDueDate{}, nil
		}
		return RelativeToSubmission{Days: *raw.DaysOffset}, nil
	default:
		return NoDueDate{}, nil
	}
}

// EncodeDueDateRule returns nil for NoDueDate and nil rules.
func EncodeDueDateRule(rule DueDateRule) ([]byte, error) {
	switch r := rule.(type) {
	case FixedDueDate:
		return json.Marshal(dueDateRuleJSON{Type: DueDateRuleFixed, FixedDate: &r.Date})
	case RelativeToStart:
		return json.Marshal(dueDateRuleJSON{Type: DueDateRuleRelativeToStart, DaysOffset: &r.Days})
	case RelativeToSubmission:
		return json.Marshal(dueDateRuleJSON{Type: DueDateRuleRelativeToSubmission, DaysOffset: &r.Days})
	default:
		return nil, nil
	}
}

// DueDateRuleColumn stores a DueDateRule in a jsonb column and on the wire.
type DueDateRuleColumn struct {
	Rule DueDateRule
}

func (c DueDateRuleColumn) Value() (driver.Value, error) {
	data, err := EncodeDueDateRule(c.Rule)
	if err != nil || data == nil {
		return nil, err
	}
	return data, nil
}

func (c *DueDateRuleColumn) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		c.Rule = NoDueDate{}
		return nil
	case []byte:
		rule, err := DecodeDueDateRule(v)
		c.Rule = rule
		return err
	case string:
		rule, err := DecodeDueDateRule([]byte(v))
		c.Rule = rule
		return err
	default:
		return fmt.Errorf("unsupported due date rule source type %T", value)
	}
}

func (c DueDateRuleColumn) MarshalJSON() ([]byte, error) {
	data, err := EncodeDueDateRule(c.Rule)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return []byte("null"), nil
	}
	return data, nil
}

func (c *DueDateRuleColumn) UnmarshalJSON(data []byte) error {
	rule, err := DecodeDueDateRule(data)
	if err != nil {
		return err
	}
	c.Rule = rule
	return nil
}

func (DueDateRuleColumn) GormDataType() string {
	return "jsonb"
}
