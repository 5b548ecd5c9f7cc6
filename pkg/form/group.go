package form

import (
	"fmt"
	"sync"

	"github.com/vango-dev/signup/pkg/signal"
)

// Group is an ordered set of named controls with group-level validators.
type Group struct {
	mu         sync.RWMutex
	controls   []AbstractControl
	byName     map[string]AbstractControl
	validators []GroupValidator

	errors *signal.Signal[Errors]
}

// NewGroup creates an empty group.
func NewGroup(validators ...GroupValidator) *Group {
	return &Group{
		byName:     make(map[string]AbstractControl),
		validators: validators,
		errors:     signal.New(Errors{}),
	}
}

// Add creates a control in the group and validates it.
// It panics if the name is already taken.
func Add[T any](g *Group, name string, initial T, validators ...Validator) *Control[T] {
	c := newControl(name, initial, validators)
	c.parent = g

	g.mu.Lock()
	if _, exists := g.byName[name]; exists {
		g.mu.Unlock()
		panic(fmt.Sprintf("form: duplicate control %q", name))
	}
	g.controls = append(g.controls, c)
	g.byName[name] = c
	g.mu.Unlock()

	c.Validate()
	return c
}

// AddValidators adds group validators and re-validates the group.
func (g *Group) AddValidators(validators ...GroupValidator) {
	g.mu.Lock()
	g.validators = append(g.validators, validators...)
	g.mu.Unlock()

	g.validateGroup()
}

// Get returns a control by name, or nil.
func (g *Group) Get(name string) AbstractControl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.byName[name]
}

// Controls returns the controls in insertion order.
func (g *Group) Controls() []AbstractControl {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]AbstractControl, len(g.controls))
	copy(out, g.controls)
	return out
}

// Errors returns a copy of the group-level errors.
func (g *Group) Errors() Errors {
	return g.errors.Get().clone()
}

// HasError reports whether the group has the given error key.
func (g *Group) HasError(key string) bool {
	return g.errors.Get().Has(key)
}

// Invalid reports whether the group or any of its controls is invalid.
func (g *Group) Invalid() bool {
	if len(g.errors.Get()) > 0 {
		return true
	}
	for _, c := range g.Controls() {
		if c.Invalid() {
			return true
		}
	}
	return false
}

// Valid is the negation of Invalid.
func (g *Group) Valid() bool {
	return !g.Invalid()
}

// Dirty reports whether any control has been edited by the user.
func (g *Group) Dirty() bool {
	for _, c := range g.Controls() {
		if c.Dirty() {
			return true
		}
	}
	return false
}

// Touched reports whether any control has been touched.
func (g *Group) Touched() bool {
	for _, c := range g.Controls() {
		if c.Touched() {
			return true
		}
	}
	return false
}

// Value returns the current values keyed by control name.
func (g *Group) Value() map[string]any {
	controls := g.Controls()
	out := make(map[string]any, len(controls))
	for _, c := range controls {
		out[c.Name()] = c.AnyValue()
	}
	return out
}

// Validate re-runs every control validator and the group validators.
func (g *Group) Validate() {
	for _, c := range g.Controls() {
		c.Validate()
	}
	g.validateGroup()
}

// Reset restores every control to its initial state.
func (g *Group) Reset() {
	for _, c := range g.Controls() {
		c.Reset()
	}
}

// MarkAllAsTouched marks every control as touched.
func (g *Group) MarkAllAsTouched() {
	for _, c := range g.Controls() {
		c.Blur()
	}
}

// Subscribe registers fn to run after any change to a control or to the
// group errors. The returned function removes every subscription.
func (g *Group) Subscribe(fn func()) (unsubscribe func()) {
	stops := []func(){g.errors.Subscribe(fn)}
	for _, c := range g.Controls() {
		stops = append(stops, c.subscribe(fn))
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}

func (g *Group) validateGroup() {
	g.mu.RLock()
	validators := make([]GroupValidator, len(g.validators))
	copy(validators, g.validators)
	g.mu.RUnlock()

	errs := Errors{}
	for _, v := range validators {
		if err := v.ValidateGroup(g); err != nil {
			key := errorKey(err)
			if _, exists := errs[key]; !exists {
				errs[key] = err.Error()
			}
		}
	}
	g.errors.Set(errs)
}
