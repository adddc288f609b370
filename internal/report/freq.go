package report

import (
	"fmt"
	"time"
)

// Freq is a reporting period. Periods are labeled by their last day,
// except QuarterStart which is labeled by its first.
type Freq string

const (
	Yearly       Freq = "Y"
	Quarterly    Freq = "Q"
	QuarterStart Freq = "QS"
	Monthly      Freq = "M"
	Weekly       Freq = "W"
)

var freqAliases = map[string]Freq{
	"Y": Yearly, "y": Yearly, "yearly": Yearly,
	"M": Monthly, "m": Monthly, "monthly": Monthly,
	"W": Weekly, "w": Weekly, "weekly": Weekly,
	"Q": Quarterly, "QS": QuarterStart,
}

func ParseFreq(s string) (Freq, error) {
	if f, ok := freqAliases[s]; ok {
		return f, nil
	}
	return "", fmt.Errorf("unknown timeline %q: use Y, Q, QS, M or W", s)
}

// Label returns the period t falls in. Weeks end on Sunday.
func (f Freq) Label(t time.Time) time.Time {
	y, m, d := t.Date()
	loc := t.Location()
	switch f {
	case Yearly:
		return time.Date(y, time.December, 31, 0, 0, 0, 0, loc)
	case Quarterly:
		end := time.Month((int(m)-1)/3*3 + 3)
		return time.Date(y, end+1, 0, 0, 0, 0, 0, loc)
	case QuarterStart:
		start := time.Month((int(m)-1)/3*3 + 1)
		return time.Date(y, start, 1, 0, 0, 0, 0, loc)
	case Weekly:
		ahead := (7 - int(t.Weekday())) % 7
		return time.Date(y, m, d+ahead, 0, 0, 0, 0, loc)
	default:
		return time.Date(y, m+1, 0, 0, 0, 0, 0, loc)
	}
}

// Next returns the label of the period after label.
func (f Freq) Next(label time.Time) time.Time {
	if f == QuarterStart {
		return label.AddDate(0, 3, 0)
	}
	return f.Label(label.AddDate(0, 0, 1))
}
