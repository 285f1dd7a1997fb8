package model

import (
	"fmt"
	"strings"
	"time"
)

// flexTime decodes RFC 3339 timestamps as well as the zone-less
// naive form the payroll API emits. Zone-less values are taken as UTC.
type flexTime time.Time

var flexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *flexTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*t = flexTime(time.Time{})
		return nil
	}
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			*t = flexTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("parse time %q: unsupported layout", raw)
}
