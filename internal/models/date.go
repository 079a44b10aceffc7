// internal/models/date.go
package models

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const DateLayout = "2006-01-02"

// Date is a calendar date. It is stored as a SQL date and travels as
// "YYYY-MM-DD" in JSON.
type Date datatypes.Date

// NewDate builds a calendar date at midnight UTC.
func NewDate(year int, month time.Month, day int) *Date {
	d := Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
	return &d
}

// DateFromTime keeps only the calendar date of t as seen in t's location.
func DateFromTime(t time.Time) *Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	y, m, day := time.Time(d).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return time.Time(d).Format(DateLayout)
}

// FormatDate renders a nullable date as YYYY-MM-DD, or "" when absent.
func FormatDate(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func (d Date) Value() (driver.Value, error) {
	return datatypes.Date(d).Value()
}

func (d *Date) Scan(value interface{}) error {
	return (*datatypes.Date)(d).Scan(value)
}

func (Date) GormDataType() string {
	return "date"
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q: want YYYY-MM-DD", raw)
	}
	*d = Date(t)
	return nil
}
