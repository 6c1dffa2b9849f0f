package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts are the string forms accepted for a due date.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
}

// CalendarDate is a picked calendar day in the date-picker's object form.
// Months is zero-based (January = 0).
type CalendarDate struct {
	Date   int `json:"date" yaml:"date" xml:"date"`
	Months int `json:"months" yaml:"months" xml:"months"`
	Years  int `json:"years" yaml:"years" xml:"years"`
}

// CalendarDateOf converts a time to its calendar day.
func CalendarDateOf(t time.Time) CalendarDate {
	return CalendarDate{Date: t.Day(), Months: int(t.Month()) - 1, Years: t.Year()}
}

// Time returns midnight UTC of the day.
func (d CalendarDate) Time() time.Time {
	return time.Date(d.Years, time.Month(d.Months+1), d.Date, 0, 0, 0, 0, time.UTC)
}

// String formats the day as YYYY-MM-DD.
func (d CalendarDate) String() string {
	return d.Time().Format("2006-01-02")
}

// UnmarshalJSON accepts the object form or an ISO date / RFC3339 string.
func (d *CalendarDate) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				*d = CalendarDateOf(t)
				return nil
			}
		}
		return fmt.Errorf("invalid date %q", s)
	}

	type plain CalendarDate
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = CalendarDate(p)
	return nil
}
