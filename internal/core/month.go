package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnparseableMonthLabel is returned when a month label is not of the form
// "<EnglishMonthName> <FourDigitYear>".
var ErrUnparseableMonthLabel = errors.New("unparseable month label")

var monthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthLabel is a billing period. Its String form is the stored label,
// e.g. "September 2024".
type MonthLabel struct {
	Year  int
	Month time.Month
}

// ParseMonthLabel parses "<MonthName> <Year>". Month names are full English
// names matched case-sensitively; the year has exactly four digits and the
// separator is a single space.
func ParseMonthLabel(s string) (MonthLabel, error) {
	name, yearStr, ok := strings.Cut(s, " ")
	if !ok || len(yearStr) != 4 {
		return MonthLabel{}, fmt.Errorf("%w: %q", ErrUnparseableMonthLabel, s)
	}
	for _, r := range yearStr {
		if r < '0' || r > '9' {
			return MonthLabel{}, fmt.Errorf("%w: %q", ErrUnparseableMonthLabel, s)
		}
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		return MonthLabel{}, fmt.Errorf("%w: %q", ErrUnparseableMonthLabel, s)
	}
	for i, n := range monthNames {
		if n == name {
			return MonthLabel{Year: year, Month: time.Month(i + 1)}, nil
		}
	}
	return MonthLabel{}, fmt.Errorf("%w: unknown month %q", ErrUnparseableMonthLabel, name)
}

// MonthLabelFor returns the billing period containing t.
func MonthLabelFor(t time.Time) MonthLabel {
	return MonthLabel{Year: t.Year(), Month: t.Month()}
}

// AddMonths moves the label n months forward, carrying into the next year past December.
func (m MonthLabel) AddMonths(n int) MonthLabel {
	idx := int(m.Month) - 1 + n
	year := m.Year + idx/12
	idx %= 12
	if idx < 0 {
		idx += 12
		year--
	}
	return MonthLabel{Year: year, Month: time.Month(idx + 1)}
}

// Before reports whether m is an earlier billing period than o.
func (m MonthLabel) Before(o MonthLabel) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

func (m MonthLabel) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m MonthLabel) String() string {
	if m.Month < time.January || m.Month > time.December {
		return ""
	}
	return fmt.Sprintf("%s %04d", monthNames[m.Month-1], m.Year)
}
