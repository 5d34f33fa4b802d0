// Package metrics keeps wall-clock timers for the stages of a command.
package metrics

import (
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// Timers holds named stage timers. Set stops the previous stage and starts the next one.
type Timers struct {
	Timers map[string]*Timer `json:"timers,omitempty" yaml:"timers,omitempty"`
	last   string
	now    func() time.Time
}

func NewTimers() *Timers {
	return &Timers{Timers: make(map[string]*Timer), now: time.Now}
}

// set starts the timer k, or stops it when already started.
func (ts *Timers) set(k string) {
	if t, ok := ts.Timers[k]; !ok {
		ts.Timers[k] = &Timer{start: ts.now()}
	} else {
		t.Total = ts.now().Sub(t.start).Seconds()
	}
}

// Set stops the last stage timer and starts k (lap).
func (ts *Timers) Set(k string) {
	if ts.last != "" {
		ts.set(ts.last)
	}
	ts.set(k)
	ts.last = k
}

// Add starts a timer without touching the running stage. Calling Add again with k stops it.
func (ts *Timers) Add(k string) {
	ts.set(k)
}

// Stop ends the running stage.
func (ts *Timers) Stop() {
	if ts.last != "" {
		ts.set(ts.last)
		ts.last = ""
	}
}

// Log writes every timer at debug level, sorted by name.
func (ts *Timers) Log() {
	keys := make([]string, 0, len(ts.Timers))
	for k := range ts.Timers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		log.WithField("stage", k).Debugf("took %.3fs", ts.Timers[k].Total)
	}
}

type Timer struct {
	start time.Time

	// Total time in seconds
	Total float64 `json:"seconds" yaml:"seconds"`
}
