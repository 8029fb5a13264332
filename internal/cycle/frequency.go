package cycle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Frequency is the recurrence interval of a schedule assignment.
type Frequency string

const (
	Daily     Frequency = "DAILY"
	Weekly    Frequency = "WEEKLY"
	Biweekly  Frequency = "BIWEEKLY"
	Monthly   Frequency = "MONTHLY"
	Quarterly Frequency = "QUARTERLY"
	Yearly    Frequency = "YEARLY"
	Custom    Frequency = "CUSTOM"
)

// DefaultFrequency is used whenever nothing better is known.
const DefaultFrequency = Weekly

// ErrUnsupportedFrequency is returned for values outside the Frequency enum.
var ErrUnsupportedFrequency = errors.New("unsupported frequency")

// Frequencies lists every supported value in enum order.
func Frequencies() []Frequency {
	return []Frequency{Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly, Custom}
}

// Valid reports whether f is one of the enum values.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly, Custom:
		return true
	}
	return false
}

// ParseFrequency parses an enum name, ignoring case and surrounding space.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFrequency, s)
	}
	return f, nil
}

// CalculateNextDueDate advances base by the interval of f.
// Month and year steps use calendar arithmetic (time.Time.AddDate), so day overflow
// normalizes forward: 2024-01-31 plus one month is 2024-03-02.
// CUSTOM has no interval of its own and advances like WEEKLY.
func CalculateNextDueDate(f Frequency, base time.Time) (time.Time, error) {
	switch f {
	case Daily:
		return base.AddDate(0, 0, 1), nil
	case Weekly, Custom:
		return base.AddDate(0, 0, 7), nil
	case Biweekly:
		return base.AddDate(0, 0, 14), nil
	case Monthly:
		return base.AddDate(0, 1, 0), nil
	case Quarterly:
		return base.AddDate(0, 3, 0), nil
	case Yearly:
		return base.AddDate(1, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, string(f))
}
