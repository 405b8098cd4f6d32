package logger

import (
	"strings"
	"sync"
	"time"
)

// Entry is one recorded event.
type Entry struct {
	Time      time.Time `json:"time"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Milestone bool      `json:"milestone,omitempty"`
}

var milestones = []string{
	"Scraping completed. Total rows scraped:",
	"Saving",
	"Data saved successfully",
	"Data successfully saved to",
	"Closing browser",
	"Browser closed successfully",
}

// IsMilestone reports whether a front-end should emphasize message.
func IsMilestone(message string) bool {
	for _, m := range milestones {
		if strings.Contains(message, m) {
			return true
		}
	}
	return false
}

// Recorder keeps the most recent events in memory so a front-end can show
// the run log.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	now     func() time.Time
}

func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 500
	}
	return &Recorder{
		entries: make([]Entry, capacity),
		now:     time.Now,
	}
}

func (r *Recorder) Log(message string, level Level) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = Entry{Time: r.now(), Level: level, Message: message, Milestone: IsMilestone(message)}
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Tail returns up to n entries, oldest first. n <= 0 returns everything held.
func (r *Recorder) Tail(n int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ordered []Entry
	if r.full {
		ordered = append(ordered, r.entries[r.next:]...)
	}
	ordered = append(ordered, r.entries[:r.next]...)

	if n > 0 && len(ordered) > n {
		ordered = ordered[len(ordered)-n:]
	}
	return ordered
}
