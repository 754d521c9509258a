package catalog

import (
	"fmt"
	"strconv"
)

// Format renders a series the way it is shown to the user, for example
// "4 sets of 10 repetitions" or "for 30 minutes".
func Format(s Series) string {
	switch {
	case s.Repetitions != nil:
		return formatRepetitions(*s.Repetitions)
	case s.Continuous != nil:
		return formatContinuous(*s.Continuous)
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (s Series) String() string { return Format(s) }

func formatRepetitions(r RepetitionSeries) string {
	out := fmt.Sprintf("%d sets of %d repetitions", r.Sets, r.Repetitions)
	if r.Load != nil {
		out += " with load of " + strconv.FormatFloat(*r.Load, 'f', 2, 64)
	}
	return out
}

func formatContinuous(c ContinuousSeries) string {
	minutes, seconds := c.DurationSeconds/60, c.DurationSeconds%60
	var span string
	if seconds == 0 {
		span = fmt.Sprintf("%d minutes", minutes)
	} else {
		span = fmt.Sprintf("%d minutes and %d seconds", minutes, seconds)
	}
	if c.Sets != nil && *c.Sets != 0 {
		return fmt.Sprintf("%d sets of %s", *c.Sets, span)
	}
	return "for " + span
}
