package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	item := ChecklistItem{Title: "Essay", DueDate: NewDate(2024, time.September, 8)}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"due_date":"2024-09-08"`)

	var decoded ChecklistItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.DueDate)
	assert.Equal(t, "2024-09-08", decoded.DueDate.String())

	data, err = json.Marshal(ChecklistItem{Title: "Tour"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"due_date":null`)
}

func TestDateKeepsCalendarDay(t *testing.T) {
	auckland, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	d := DateFromTime(time.Date(2024, 9, 8, 1, 0, 0, 0, auckland))
	assert.Equal(t, "2024-09-08", FormatDate(d))
	assert.Equal(t, time.Date(2024, 9, 8, 0, 0, 0, 0, time.UTC), d.Time())
	assert.Equal(t, "", FormatDate(nil))
}

func TestDateUnmarshalRejectsTimestamps(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"2024-09-08T00:00:00Z"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"09/08/2024"`), &d))
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29"`), &d))
	assert.Equal(t, "2024-02-29", d.String())
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2024, time.March, 15).Value()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), v)

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-15", scanned.String())
}
