// Package stage implements the named, typed, in-memory table store of §4.3.
//
// Grounded on cruciblehq-cruxd's internal/server/server.go, which keeps a
// small piece of mutable run-scoped state (the build counter); the stage
// manager generalizes that state to a named map of tables with capacity and
// reserved-name rules. Unlike the teacher, it takes no lock.
package stage

import (
	"time"

	"github.com/cruciblehq/reciperunner/internal/table"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// DefaultMaxStages is the capacity applied when a Manager is created with a
// zero limit (§4.3).
const DefaultMaxStages = 25

// reserved is the set of names a stage may never use (§3, §4.3).
var reserved = map[string]bool{
	"input":   true,
	"output":  true,
	"current": true,
	"data":    true,
}

// Metadata describes a stage without exposing its table (§3).
type Metadata struct {
	Name        string
	Description string
	CreatedBy   string // name of the step that created it
	CreatedAt   time.Time
	Rows        int
	Columns     int
	MemoryBytes int64
	Protected   bool
	Populated   bool // declared but never written, vs. written at least once
}

type entry struct {
	table *table.Table
	meta  Metadata
}

// Manager is the stage store for a single pipeline run. It is not safe for
// concurrent use from more than one goroutine at a time; §5 guarantees the
// orchestrator never calls it from more than one step at once.
type Manager struct {
	maxStages int
	entries   map[string]*entry
	order     []string // stage names in declaration/write order
}

// New creates an empty Manager. maxStages <= 0 uses [DefaultMaxStages].
func New(maxStages int) *Manager {
	if maxStages <= 0 {
		maxStages = DefaultMaxStages
	}
	return &Manager{
		maxStages: maxStages,
		entries:   make(map[string]*entry),
	}
}

// Declare pre-creates an empty, populated-false slot, reserving name without
// counting it toward capacity until the first write (§4.3).
func (m *Manager) Declare(name, description string, protected bool) error {
	if reserved[name] {
		return xerr.Wrapf(xerr.ErrStageConflict, "%q is a reserved stage name", name)
	}
	if _, exists := m.entries[name]; exists {
		return xerr.Wrapf(xerr.ErrStageConflict, "stage %q already declared", name)
	}

	m.entries[name] = &entry{meta: Metadata{Name: name, Description: description, Protected: protected}}
	m.order = append(m.order, name)
	return nil
}

// SaveOptions controls a Save call (§4.3).
type SaveOptions struct {
	StepName    string
	Description string
	Overwrite   bool
}

// Save writes t under name. It fails if name is reserved, if t is empty, if
// name already holds a populated stage (protected or not) without Overwrite,
// or if writing would exceed capacity (§4.3).
func (m *Manager) Save(name string, t *table.Table, opts SaveOptions) error {
	if reserved[name] {
		return xerr.Wrapf(xerr.ErrStageConflict, "%q is a reserved stage name", name)
	}
	if t.IsEmpty() {
		return xerr.Wrapf(xerr.ErrStageConflict, "cannot save empty table to stage %q", name)
	}

	existing, exists := m.entries[name]

	if exists && existing.meta.Populated {
		if existing.meta.Protected && !opts.Overwrite {
			return xerr.Wrapf(xerr.ErrStageConflict, "stage %q is protected", name)
		}
		if !existing.meta.Protected && !opts.Overwrite {
			return xerr.Wrapf(xerr.ErrStageConflict, "stage %q already exists", name)
		}
	}

	if (!exists || !existing.meta.Populated) && m.populatedCount() >= m.maxStages {
		return xerr.Wrapf(xerr.ErrStageConflict, "stage capacity (%d) exceeded", m.maxStages)
	}

	var protected bool
	if exists {
		protected = existing.meta.Protected
	}

	clone := t.Clone()
	m.entries[name] = &entry{
		table: clone,
		meta: Metadata{
			Name:        name,
			Description: opts.Description,
			CreatedBy:   opts.StepName,
			CreatedAt:   time.Now(),
			Rows:        clone.NumRows(),
			Columns:     clone.NumColumns(),
			MemoryBytes: estimateMemory(clone),
			Protected:   protected,
			Populated:   true,
		},
	}
	if !exists {
		m.order = append(m.order, name)
	}
	return nil
}

// Load returns a copy of the table saved as name (§4.3, §8 idempotent stage
// isolation).
func (m *Manager) Load(name string) (*table.Table, error) {
	e, ok := m.entries[name]
	if !ok || !e.meta.Populated {
		return nil, xerr.Wrapf(xerr.ErrStageNotFound, "%q", name)
	}
	return e.table.Clone(), nil
}

// Exists reports whether name holds a populated stage.
func (m *Manager) Exists(name string) bool {
	e, ok := m.entries[name]
	return ok && e.meta.Populated
}

// List returns the metadata of every declared or populated stage, keyed by
// stage name. The result is a map, so it carries no order.
func (m *Manager) List() map[string]Metadata {
	out := make(map[string]Metadata, len(m.entries))
	for _, name := range m.order {
		out[name] = m.entries[name].meta
	}
	return out
}

// Cleanup releases all stages and resets the manager to empty (§4.3, §4.5
// phase 5 teardown).
func (m *Manager) Cleanup() {
	m.entries = make(map[string]*entry)
	m.order = nil
}

func (m *Manager) populatedCount() int {
	n := 0
	for _, e := range m.entries {
		if e.meta.Populated {
			n++
		}
	}
	return n
}

// estimateMemory gives an approximate footprint for a table's metadata
// (§3): a fixed per-cell overhead times the number of stored cells. Good
// enough for the metadata field's purpose of ballpark comparison between
// stages, not exact memory accounting.
func estimateMemory(t *table.Table) int64 {
	const perCell = 16
	return int64(t.NumRows()) * int64(t.NumColumns()) * perCell
}
