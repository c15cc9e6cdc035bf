package core

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

// layouts accepted for client dates, tried in order
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05", // datetime-local with seconds
	"2006-01-02T15:04",    // datetime-local
	"2006-01-02",          // date
}

// ParseDate parses an RFC 3339 timestamp or an HTML `date` / `datetime-local` value.
// Values without a zone are read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date %q", s)
}

func decodeDate(data []byte) (t time.Time, set bool, err error) {
	if string(data) == "null" {
		return time.Time{}, false, nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return time.Time{}, false, errors.Errorf("invalid date %s", data)
	}
	if strings.TrimSpace(s) == "" {
		return time.Time{}, false, nil
	}
	t, err = ParseDate(s)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// Date is a timestamp read leniently from JSON (see ParseDate) and written as RFC 3339.
// null and "" decode as the zero time, which `required` rejects.
type Date struct {
	time.Time
}

func DateFrom(t time.Time) Date {
	return Date{Time: t}
}

func (d *Date) UnmarshalJSON(data []byte) error {
	t, _, err := decodeDate(data)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// NullDate is an optional Date. null and "" both decode as unset.
type NullDate struct {
	null.Time
}

func NullDateFrom(t time.Time) NullDate {
	return NullDate{Time: null.TimeFrom(t)}
}

func (d *NullDate) UnmarshalJSON(data []byte) error {
	t, set, err := decodeDate(data)
	if err != nil {
		return err
	}
	d.Time = null.NewTime(t, set)
	return nil
}

// validate dates as time.Time so `required` applies to them
func registerDateTypes(validate *validator.Validate) {
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		if d, ok := v.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})
}
