package cli

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/neilberkman/ccrewind/internal/core/timeline"
)

// resolveAt turns an --at value into an event uuid. Exact uuids and uuid
// prefixes win; anything else is tried as a natural-language or formatted
// time and resolves to the newest qualifying event at or before it. An
// empty path matches any event.
func resolveAt(tl *timeline.Timeline, path, spec string) (string, error) {
	if uuid, err := tl.Index().ResolvePrefix(spec); err == nil {
		return uuid, nil
	}

	at := parseWhen(spec)
	if at == nil {
		return "", fmt.Errorf("cannot resolve %q as an event id or time", spec)
	}

	if path != "" {
		if ev, ok := tl.PathEventAt(path, *at); ok {
			return ev.UUID, nil
		}
		return "", fmt.Errorf("no event for %s at or before %s", path, at.Format(time.RFC3339))
	}
	if ev, ok := tl.EventAt(*at); ok {
		return ev.UUID, nil
	}
	return "", fmt.Errorf("no event at or before %s", at.Format(time.RFC3339))
}

// parseWhen attempts natural-language parsing first, then standard
// formats
func parseWhen(s string) *time.Time {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	if result, err := w.Parse(s, time.Now()); err == nil && result != nil {
		return &result.Time
	}

	formats := []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"2006-01-02 15:04",
	}
	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, time.Local); err == nil {
			return &t
		}
	}
	return nil
}
