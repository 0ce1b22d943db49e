// Package registry implements the processor registry and role contracts of
// §4.4: a process-wide mapping from a processor_type string to a factory
// that builds an instance satisfying one of four fixed role contracts.
//
// Grounded on cruciblehq-cruxd's internal/build/step.go, whose executeStep
// dispatches on a step's shape (operation vs. group vs. modifier) with a
// fixed switch; per spec.md's REDESIGN FLAGS, that switch becomes an
// explicit factory map here instead of a hardcoded dispatch, and
// server.go's dispatch-by-command-string pattern is generalized from a
// protocol enum to an open, registrable string key.
package registry

import (
	"github.com/cruciblehq/reciperunner/internal/stage"
	"github.com/cruciblehq/reciperunner/internal/variables"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// Role is the static contract a processor factory declares at registration
// (§3, §4.4).
type Role int

const (
	Transform Role = iota // one input stage, one output stage
	Import                // zero input stages, one output stage (reads a file)
	Export                // one input stage, zero output stages (writes a file)
	FileOp                // zero input stages, zero output stages
)

func (r Role) String() string {
	switch r {
	case Transform:
		return "transform"
	case Import:
		return "import"
	case Export:
		return "export"
	case FileOp:
		return "fileop"
	default:
		return "unknown"
	}
}

// Scope is everything a processor's execute method receives (§4.4).
type Scope struct {
	Stages    *stage.Manager
	Variables *variables.Scope
	Config    map[string]any // the step's raw config map, minus processor_type/step_description
}

// Outcome is the result of one processor's execution.
type Outcome struct {
	Err error
}

// OK is the zero-value success outcome.
var OK = Outcome{}

// Err builds a failure outcome.
func Err(err error) Outcome {
	return Outcome{Err: err}
}

// Processor is the single uniform entry point the orchestrator calls on
// every processor, regardless of role (§4.4).
type Processor interface {
	Execute(scope Scope) Outcome
}

// Describe is a processor's structured capability record (§4.4), returned
// by a factory's Describe method for capability-discovery callers.
type Describe struct {
	ProcessorType string
	Role          Role
	Summary       string
	Options       []string // supported option names, for documentation/discovery
}

// Factory builds Processor instances for one processor_type and exposes the
// metadata §4.4 requires for self-tests and capability discovery.
type Factory interface {
	// New validates config's shape and builds a Processor from it. Shape
	// errors are returned wrapped in xerr.ErrConfig.
	New(config map[string]any) (Processor, error)
	Role() Role
	MinimalConfig() map[string]any
	Describe() Describe
	// Examples returns structured usage examples; nil if none are defined.
	Examples() []map[string]any
}

// Registry is the process-wide (but explicitly constructed, not global —
// see spec.md REDESIGN FLAGS) processor_type -> Factory map.
type Registry struct {
	factories map[string]Factory
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under processorType. Registering the same type
// twice is an error (§4.4).
func (r *Registry) Register(processorType string, factory Factory) error {
	if _, exists := r.factories[processorType]; exists {
		return xerr.Wrapf(xerr.ErrInternal, "processor type %q already registered", processorType)
	}
	r.factories[processorType] = factory
	return nil
}

// Lookup returns the factory for processorType, or xerr.ErrUnknownProcessor.
func (r *Registry) Lookup(processorType string) (Factory, error) {
	f, ok := r.factories[processorType]
	if !ok {
		return nil, xerr.Wrapf(xerr.ErrUnknownProcessor, "%q", processorType)
	}
	return f, nil
}

// Types returns every registered processor_type, for the describe CLI
// command and capability-discovery callers.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.factories))
	for t := range r.factories {
		out = append(out, t)
	}
	return out
}
