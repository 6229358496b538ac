package ntime

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// storageLayout has a fixed width, so that stored values sort lexically in chronological order.
const storageLayout = "2006-01-02T15:04:05.000000Z"

// NTime represents a nullable time.Time.
// It can be used a scan destination and can be marshalled to JSON.
type NTime struct {
	time    time.Time
	isValid bool // false when Time is null
}

// MarshalJSON implements the Marshaller interface and operates on values rather than pointers, given NTime's heft.
func (nt NTime) MarshalJSON() ([]byte, error) {
	if nt.isValid {
		return []byte(fmt.Sprintf("%q", nt.time.UTC().Format(time.RFC3339))), nil
	}
	return []byte("null"), nil
}

// Scan implements the Scanner interface.
// SQLite drivers return text when a column's declared type is lost, as with expressions.
func (nt *NTime) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*nt = NTime{}
	case time.Time:
		*nt = NTime{v.UTC(), true}
	case string:
		return nt.parse(v)
	case []byte:
		return nt.parse(string(v))
	default:
		return fmt.Errorf("ntime: cannot scan %T", value)
	}
	return nil
}

func (nt *NTime) parse(value string) error {
	for _, layout := range []string{storageLayout, time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			*nt = NTime{parsed.UTC(), true}
			return nil
		}
	}
	return fmt.Errorf("ntime: unrecognised time %q", value)
}

// Value implements the driver Valuer interface.
func (nt NTime) Value() (driver.Value, error) {
	if nt.isValid {
		return driver.Value(nt.time.UTC().Format(storageLayout)), nil
	}
	return nil, nil
}

func Now() NTime {
	return From(time.Now())
}

// From wraps a time, truncated to the stored precision.
func From(t time.Time) NTime {
	return NTime{time: t.UTC().Truncate(time.Microsecond), isValid: true}
}

func (nt NTime) Time() time.Time {
	return nt.time
}

func (nt NTime) IsValid() bool {
	return nt.isValid
}
