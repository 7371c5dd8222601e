// Package stats reports per-rule progress of a cleaning run as structured
// events instead of ad-hoc prints. Each pipeline run gets its own RunWatcher
// carrying a unique run ID; every rule applied emits one Event holding the
// row counts before and after the rule.
package stats

import (
	"time"

	"github.com/rs/xid"
	"github.com/starpipe/starpipe/logger"
)

// Event describes the outcome of one rule within a pipeline run.
type Event struct {
	RunId       string        `json:"runId"`
	Pipeline    string        `json:"pipeline"`
	Rule        string        `json:"rule"`
	RowsIn      int           `json:"rowsIn"`
	RowsOut     int           `json:"rowsOut"`
	RowsDropped int           `json:"rowsDropped"`
	Elapsed     time.Duration `json:"elapsedNs"`
}

// EventHandler receives events as they are emitted.
type EventHandler func(e Event)

// RunWatcher collects rule events for one pipeline run.
// It is not safe for concurrent use; each pipeline run owns its watcher
// exclusively, matching the single-batch-per-run design.
type RunWatcher struct {
	log      logger.Logger
	runId    string
	pipeline string
	handlers []EventHandler
	events   []Event
}

func NewRunWatcher(log logger.Logger, pipeline string) *RunWatcher {
	return &RunWatcher{
		log:      log,
		runId:    xid.New().String(),
		pipeline: pipeline,
		events:   make([]Event, 0),
	}
}

// RunId returns the unique ID assigned to this run.
func (w *RunWatcher) RunId() string {
	return w.runId
}

// OnEvent registers a handler that is called for every emitted event.
func (w *RunWatcher) OnEvent(h EventHandler) {
	w.handlers = append(w.handlers, h)
}

// RuleApplied records the outcome of one rule and notifies handlers.
func (w *RunWatcher) RuleApplied(rule string, rowsIn int, rowsOut int, start time.Time) {
	e := Event{
		RunId:       w.runId,
		Pipeline:    w.pipeline,
		Rule:        rule,
		RowsIn:      rowsIn,
		RowsOut:     rowsOut,
		RowsDropped: rowsIn - rowsOut,
		Elapsed:     time.Since(start),
	}
	w.events = append(w.events, e)
	w.log.Info("STATS: ", w.pipeline, " rule ", rule, " rows in ", rowsIn, ", rows out ", rowsOut)
	for _, h := range w.handlers {
		h(e)
	}
}

// Events returns all events recorded so far.
func (w *RunWatcher) Events() []Event {
	retval := make([]Event, len(w.events))
	copy(retval, w.events)
	return retval
}
