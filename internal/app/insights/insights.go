// Package insights provides the play history recorder and the derived
// mood-frequency statistics.
package insights

import (
	"sort"
	"sync"
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/moodtunes/moodtunes/internal/domain/history"
	"github.com/moodtunes/moodtunes/internal/domain/track"
	"github.com/moodtunes/moodtunes/internal/infra/store"
)

// Recorder owns the durable history log. Entries are appended in the exact
// order playback events occur, newest first, capped at history.Cap.
type Recorder struct {
	mu    sync.Mutex
	store *store.Store
	log   []history.Item
	now   func() time.Time
}

// NewRecorder creates a recorder, restoring any stored log. An unparsable
// stored log is treated as empty.
func NewRecorder(st *store.Store) *Recorder {
	r := &Recorder{
		store: st,
		now:   time.Now,
	}
	st.Read(store.History, &r.log)
	return r
}

// Record appends a play of t under the given mood and persists the log.
func (r *Recorder) Record(mood string, t track.Track) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.log = history.Push(r.log, history.NewItem(r.now().UnixMilli(), mood, t))
	if err := r.store.Write(store.History, r.log); err != nil {
		zlog.Error().Msgf("failed to persist history: %v", err)
	}
}

// Items returns a copy of the log, newest first.
func (r *Recorder) Items() []history.Item {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]history.Item, len(r.log))
	copy(items, r.log)
	return items
}

// Len returns the number of logged entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.log)
}

// Stat is the aggregated share of one mood in the history log.
type Stat struct {
	Mood       string  `json:"mood"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Report is the full mood-frequency breakdown.
type Report struct {
	Stats []Stat `json:"stats"`
	Total int    `json:"total"`
	Empty bool   `json:"empty"`
}

// Aggregate derives mood-frequency statistics from the history log: counts
// per mood, percentage share of the total, sorted by count descending with
// ties broken by first encounter order. An empty log yields Empty=true
// rather than a division by zero.
func Aggregate(items []history.Item) Report {
	if len(items) == 0 {
		return Report{Stats: []Stat{}, Empty: true}
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, item := range items {
		if _, seen := counts[item.Mood]; !seen {
			order = append(order, item.Mood)
		}
		counts[item.Mood]++
	}

	stats := make([]Stat, 0, len(order))
	for _, m := range order {
		stats = append(stats, Stat{
			Mood:       m,
			Count:      counts[m],
			Percentage: float64(counts[m]) / float64(len(items)) * 100,
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	return Report{Stats: stats, Total: len(items)}
}
