package history

import (
	"encoding/json"
	"strings"
	"time"
)

// DisplayLayout formats timestamps shown in history views.
const DisplayLayout = "2006-01-02 15:04"

// Values decodes a recorded value into display tokens: one token for scalars, one per tag
// for tag lists, none for null. Timestamps are rendered with DisplayLayout in loc.
func Values(raw json.RawMessage, loc *time.Location) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return []string{string(raw)}
	}
	if ts, err := time.Parse(time.RFC3339Nano, text); err == nil {
		if loc == nil {
			loc = time.UTC
		}
		return []string{ts.In(loc).Format(DisplayLayout)}
	}
	return []string{text}
}

// Join renders values as a comma separated list.
func Join(values []string) string {
	return strings.Join(values, ", ")
}
