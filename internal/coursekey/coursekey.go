// Package coursekey parses LMS course key strings into their structured
// org / course / run segments.
package coursekey

import (
	"fmt"
	"strings"
)

// Prefix of new-style course keys, e.g. "course-v1:edX+DemoX+Demo_Course".
const v1Prefix = "course-v1:"

// Key is a parsed course key.
type Key struct {
	Org    string
	Course string
	Run    string
}

// String renders the key in new-style format regardless of the format it
// was parsed from.
func (k Key) String() string {
	return fmt.Sprintf("%s%s+%s+%s", v1Prefix, k.Org, k.Course, k.Run)
}

// Parse parses either an old-style key ("edX/DemoX/Demo_Course") or a
// new-style key ("course-v1:edX+DemoX+Demo_Course"). All three segments
// must be present and non-empty.
func Parse(raw string) (Key, error) {
	var parts []string
	if strings.HasPrefix(raw, v1Prefix) {
		parts = strings.Split(strings.TrimPrefix(raw, v1Prefix), "+")
	} else {
		parts = strings.Split(raw, "/")
	}
	if len(parts) != 3 {
		return Key{}, fmt.Errorf("invalid course key %q", raw)
	}
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, " /+") {
			return Key{}, fmt.Errorf("invalid course key %q", raw)
		}
	}
	return Key{Org: parts[0], Course: parts[1], Run: parts[2]}, nil
}
