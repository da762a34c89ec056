package repository

import "time"

// timeLayout is RFC3339 with a fixed-width nanosecond fraction. The width
// matters: created_at columns are compared and sorted as text in SQL, and
// only a fixed-width fraction keeps lexical order identical to chronological
// order (RFC3339Nano strips trailing zeros, so "...00.5Z" would sort before
// "...00Z").
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// parseTime accepts the fixed-width layout plus plain RFC3339 variants for
// rows written before the fraction was padded.
func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err == nil {
		return t.UTC(), nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	if err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
