// Package clean is the column normalization engine. A Pipeline is a
// declarative, ordered list of rules bound to one business entity; the
// Engine applies the rules to a batch in place and reports per-rule row
// counts through a stats.RunWatcher. Entity behaviour lives in data
// (pipelines.go), not in per-entity types.
package clean

import (
	"time"

	"github.com/pkg/errors"
	"github.com/starpipe/starpipe/batch"
	"github.com/starpipe/starpipe/constants"
	"github.com/starpipe/starpipe/helper"
	"github.com/starpipe/starpipe/logger"
	"github.com/starpipe/starpipe/stats"
)

// Policy selects what happens to a row when a step's cell transform fails.
type Policy int

const (
	CoerceToAbsent Policy = iota // the failed cell becomes the absent value.
	DropRow                      // the whole row is dropped.
	Fatal                        // the pipeline run is aborted.
)

// Rule is one ordered element of a Pipeline.
type Rule interface {
	Name() string
	Apply(log logger.Logger, b *batch.Batch) error
}

// Pipeline is a named, ordered sequence of rules for one entity.
type Pipeline struct {
	Name  string
	Rules []Rule
}

// Engine applies pipelines to batches.
type Engine struct {
	log     logger.Logger
	watcher *stats.RunWatcher
}

// NewEngine returns an Engine. The watcher may be nil to disable progress
// events.
func NewEngine(log logger.Logger, watcher *stats.RunWatcher) *Engine {
	return &Engine{log: log, watcher: watcher}
}

// Run applies every rule of p to b in order. Any error aborts the run; the
// batch must then be considered dirty and discarded (no partial commit).
func (e *Engine) Run(p Pipeline, b *batch.Batch) error {
	e.log.Info("pipeline ", p.Name, " is running with ", b.NumRows(), " rows")
	for _, r := range p.Rules {
		rowsIn := b.NumRows()
		start := time.Now()
		if err := r.Apply(e.log, b); err != nil {
			return errors.Wrapf(err, "pipeline %q rule %q", p.Name, r.Name())
		}
		if e.watcher != nil {
			e.watcher.RuleApplied(r.Name(), rowsIn, b.NumRows(), start)
		}
	}
	e.log.Info("pipeline ", p.Name, " complete with ", b.NumRows(), " rows")
	return nil
}

// Step applies a cell transform to one column with a failure policy.
type Step struct {
	Column    string
	Fn        CellFunc
	OnFailure Policy
	Required  bool       // a missing column is fatal when true, skipped when false.
	Kind      batch.Kind // declared column kind after the transform; KindRaw leaves it unchanged.
	StepName  string     // optional override for Name().
}

func (s Step) Name() string {
	if s.StepName != "" {
		return s.StepName
	}
	return "transform-" + s.Column
}

func (s Step) Apply(log logger.Logger, b *batch.Batch) error {
	col, ok := b.Column(s.Column)
	if !ok { // if the column is missing from the batch...
		if s.Required {
			return MissingColumnError{Column: s.Column}
		}
		log.Debug("column ", s.Column, " not found; skipping ", s.Name())
		return nil
	}
	var dropRows map[int]bool
	for i, v := range col.Values {
		nv, err := s.Fn(v)
		if err != nil {
			switch s.OnFailure {
			case Fatal:
				return errors.Wrapf(err, "row %v", i)
			case DropRow:
				if dropRows == nil {
					dropRows = make(map[int]bool)
				}
				dropRows[i] = true
				continue
			default: // CoerceToAbsent
				nv = nil
			}
		}
		col.Values[i] = nv
	}
	if len(dropRows) > 0 {
		b.FilterRows(func(row int) bool { return !dropRows[row] })
	}
	if s.Kind != batch.KindRaw {
		b.SetKind(s.Column, s.Kind)
	}
	return nil
}

// NullNormalize maps the source's null sentinel token to the absent value in
// every column. Cells already absent or holding non-sentinel values are left
// alone.
type NullNormalize struct {
	Sentinel string // defaults to constants.NullSentinel when empty.
}

func (r NullNormalize) Name() string { return "null-normalize" }

func (r NullNormalize) Apply(log logger.Logger, b *batch.Batch) error {
	sentinel := r.Sentinel
	if sentinel == "" {
		sentinel = constants.NullSentinel
	}
	for _, name := range b.ColumnNames() {
		col, _ := b.Column(name)
		for i, v := range col.Values {
			if s, ok := v.(string); ok && s == sentinel {
				col.Values[i] = nil
			}
		}
	}
	return nil
}

// DropAnyNull removes every row containing an absent value in any column
// (the fix-strategy row policy).
type DropAnyNull struct{}

func (r DropAnyNull) Name() string { return "drop-any-null" }

func (r DropAnyNull) Apply(log logger.Logger, b *batch.Batch) error {
	names := b.ColumnNames()
	b.FilterRows(func(row int) bool {
		for _, n := range names {
			if batch.IsAbsent(b.Cell(n, row)) {
				return false
			}
		}
		return true
	})
	return nil
}

// DropAbsent removes rows where any of the named columns is absent
// (the targeted row policy). Missing columns are skipped.
type DropAbsent struct {
	Columns []string
}

func (r DropAbsent) Name() string { return "drop-absent" }

func (r DropAbsent) Apply(log logger.Logger, b *batch.Batch) error {
	names := make([]string, 0, len(r.Columns))
	for _, n := range r.Columns {
		if b.HasColumn(n) {
			names = append(names, n)
		}
	}
	b.FilterRows(func(row int) bool {
		for _, n := range names {
			if batch.IsAbsent(b.Cell(n, row)) {
				return false
			}
		}
		return true
	})
	return nil
}

// Dedupe keeps only the first occurrence of each value in the named column.
// It is skipped if the column is missing.
type Dedupe struct {
	Column string
}

func (r Dedupe) Name() string { return "dedupe-" + r.Column }

func (r Dedupe) Apply(log logger.Logger, b *batch.Batch) error {
	col, ok := b.Column(r.Column)
	if !ok {
		log.Debug("column ", r.Column, " not found; skipping ", r.Name())
		return nil
	}
	seen := make(map[string]bool, len(col.Values))
	b.FilterRows(func(row int) bool {
		key := helper.ValueToString(col.Values[row])
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
	return nil
}

// DropColumns removes the named columns from the batch.
// Absence of any of them is not an error.
type DropColumns struct {
	Columns []string
}

func (r DropColumns) Name() string { return "drop-columns" }

func (r DropColumns) Apply(log logger.Logger, b *batch.Batch) error {
	for _, n := range r.Columns {
		b.DropColumn(n)
	}
	return nil
}

// Derive adds a new column computed from an existing one.
type Derive struct {
	Source string
	Target string
	Fn     CellFunc
	Kind   batch.Kind
}

func (r Derive) Name() string { return "derive-" + r.Target }

func (r Derive) Apply(log logger.Logger, b *batch.Batch) error {
	col, ok := b.Column(r.Source)
	if !ok {
		return MissingColumnError{Column: r.Source}
	}
	values := make([]interface{}, len(col.Values))
	for i, v := range col.Values {
		nv, err := r.Fn(v)
		if err != nil { // derivations never drop rows; a failed cell is absent.
			nv = nil
		}
		values[i] = nv
	}
	b.DropColumn(r.Target) // replace any stale target so re-running is stable.
	return b.AddColumn(r.Target, r.Kind, values)
}
