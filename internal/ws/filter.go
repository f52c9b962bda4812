package ws

import (
	"strings"

	"github.com/samber/lo"

	"github.com/butterflysky/elgato-keylight/internal/events"
)

// TypesParam is the query parameter holding a comma-separated event type
// filter, e.g. ?types=light,effect.finished.
const TypesParam = "types"

// Filter selects the event types a client receives. An empty filter
// receives everything.
type Filter []string

// ParseFilter splits comma-separated filter values, dropping blanks and
// duplicates.
func ParseFilter(values []string) Filter {
	var f Filter
	for _, v := range values {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f = append(f, t)
			}
		}
	}
	return lo.Uniq(f)
}

// Match reports whether events of type t pass the filter. An entry matches
// its exact type or, as a prefix, every type below it: "light" and
// "light.*" both match "light.state_changed".
func (f Filter) Match(t events.EventType) bool {
	if len(f) == 0 {
		return true
	}
	return lo.SomeBy(f, func(entry string) bool {
		if string(t) == entry {
			return true
		}
		prefix := strings.TrimSuffix(strings.TrimSuffix(entry, "*"), ".")
		return strings.HasPrefix(string(t), prefix+".")
	})
}
