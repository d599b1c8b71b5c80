package cron

import (
	"fmt"
	"strings"
)

// NormalizeCronExpr accepts a 5-field (classic), 6-field (seconds
// included), or 7-field (seconds and year) cron expression and pads it to
// the canonical 7-field form: sec min hour dom month dow year. A 5-field
// expression gets "0" prepended for seconds and "*" appended for year; a
// 6-field expression gets "*" appended for year.
func NormalizeCronExpr(expr string) (string, error) {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 5:
		fields = append([]string{"0"}, fields...)
		fields = append(fields, "*")
	case 6:
		fields = append(fields, "*")
	case 7:
		// already canonical
	default:
		return "", fmt.Errorf("cron: expected 5, 6, or 7 fields, got %d: %q", len(fields), expr)
	}
	return strings.Join(fields, " "), nil
}

// stripYear drops the canonical form's trailing year field, which
// robfig/cron has no native concept of. A non-wildcard year is accepted
// but not enforced beyond being syntactically present — the scheduler's
// next-run computation is seconds-through-day-of-week only.
func stripYear(normalized string) string {
	fields := strings.Fields(normalized)
	if len(fields) != 7 {
		return normalized
	}
	return strings.Join(fields[:6], " ")
}
