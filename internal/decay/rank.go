package decay

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gauge-tracker/internal/reading"
)

// DefaultWatchLimit is how many entries a watch list shows by default.
const DefaultWatchLimit = 10

// Entry is one ranked object.
type Entry struct {
	ID         string
	Projection Projection
}

// Rank projects every history and orders the defined ones by earliest
// failure, most urgent first. Ties are broken by ID so the order is
// deterministic. Objects with an undefined projection are omitted.
// A limit <= 0 returns every defined entry.
func (p *Projector) Rank(histories map[string]reading.History, limit int) []Entry {
	entries := make([]Entry, 0, len(histories))
	for id, h := range histories {
		proj, ok := p.Project(h)
		if !ok {
			continue
		}
		entries = append(entries, Entry{ID: id, Projection: proj})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].Projection.Earliest, entries[j].Projection.Earliest
		if !a.Equal(b) {
			return a.Before(b)
		}
		return entries[i].ID < entries[j].ID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// FormatRemaining renders a duration as days and hours, e.g. "2d, 3h" or
// "5h". Durations under an hour render as minutes.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "now"
	}
	days := int(d / (24 * time.Hour))
	hours := int((d % (24 * time.Hour)) / time.Hour)

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%dm", int(d/time.Minute))
	}
	return strings.Join(parts, ", ")
}
