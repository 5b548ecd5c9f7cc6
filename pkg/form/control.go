package form

import (
	"sort"

	"github.com/vango-dev/signup/pkg/signal"
)

// Errors maps an error key (e.g. "required") to its message.
type Errors map[string]string

// Has reports whether the key is present.
func (e Errors) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Keys returns the error keys in sorted order.
func (e Errors) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Messages returns the messages ordered by key.
func (e Errors) Messages() []string {
	msgs := make([]string, 0, len(e))
	for _, k := range e.Keys() {
		msgs = append(msgs, e[k])
	}
	return msgs
}

func (e Errors) clone() Errors {
	out := make(Errors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// AbstractControl is the type-erased view of a control used by groups,
// matchers and renderers.
type AbstractControl interface {
	Name() string
	AnyValue() any
	Errors() Errors
	Invalid() bool
	Dirty() bool
	Touched() bool
	Parent() *Group
	Blur()
	Reset()
	Validate()

	subscribe(fn func()) func()
}

// Control is a single typed form field.
//
// Controls are mutated from one goroutine at a time (the event loop that
// owns the form); reads are safe from any goroutine.
type Control[T any] struct {
	name       string
	initial    T
	parent     *Group
	validators []Validator

	value   *signal.Signal[T]
	errors  *signal.Signal[Errors]
	dirty   *signal.Signal[bool]
	touched *signal.Signal[bool]
}

func newControl[T any](name string, initial T, validators []Validator) *Control[T] {
	return &Control[T]{
		name:       name,
		initial:    initial,
		validators: validators,
		value:      signal.New(initial),
		errors:     signal.New(Errors{}),
		dirty:      signal.New(false),
		touched:    signal.New(false),
	}
}

// Name returns the control name within its group.
func (c *Control[T]) Name() string {
	return c.name
}

// Value returns the current value.
func (c *Control[T]) Value() T {
	return c.value.Get()
}

// AnyValue returns the current value as any.
func (c *Control[T]) AnyValue() any {
	return c.value.Get()
}

// SetValue replaces the value programmatically. The control is
// re-validated but not marked dirty.
func (c *Control[T]) SetValue(v T) {
	c.value.Set(v)
	c.Validate()
}

// Input applies a user edit: the value is replaced, the control is marked
// dirty and re-validated.
func (c *Control[T]) Input(v T) {
	c.value.Set(v)
	c.dirty.Set(true)
	c.Validate()
}

// Blur marks the control as touched.
func (c *Control[T]) Blur() {
	c.touched.Set(true)
}

// Errors returns a copy of the current validation errors.
func (c *Control[T]) Errors() Errors {
	return c.errors.Get().clone()
}

// HasError reports whether the control currently has the given error key.
func (c *Control[T]) HasError(key string) bool {
	return c.errors.Get().Has(key)
}

// Invalid reports whether any validator failed.
func (c *Control[T]) Invalid() bool {
	return len(c.errors.Get()) > 0
}

// Valid is the negation of Invalid.
func (c *Control[T]) Valid() bool {
	return !c.Invalid()
}

// Dirty reports whether the user has edited the control.
func (c *Control[T]) Dirty() bool {
	return c.dirty.Get()
}

// Pristine is the negation of Dirty.
func (c *Control[T]) Pristine() bool {
	return !c.Dirty()
}

// Touched reports whether the control has lost focus at least once.
func (c *Control[T]) Touched() bool {
	return c.touched.Get()
}

// Parent returns the owning group.
func (c *Control[T]) Parent() *Group {
	return c.parent
}

// Reset restores the initial value and clears dirty and touched.
func (c *Control[T]) Reset() {
	c.value.Set(c.initial)
	c.dirty.Set(false)
	c.touched.Set(false)
	c.Validate()
}

// Validate runs the control validators and then the group validators.
func (c *Control[T]) Validate() {
	c.validateSelf()
	if c.parent != nil {
		c.parent.validateGroup()
	}
}

func (c *Control[T]) validateSelf() {
	value := any(c.value.Get())
	errs := Errors{}
	for _, v := range c.validators {
		if err := v.Validate(value); err != nil {
			key := errorKey(err)
			if _, exists := errs[key]; !exists {
				errs[key] = err.Error()
			}
		}
	}
	c.errors.Set(errs)
}

func (c *Control[T]) subscribe(fn func()) func() {
	stops := []func(){
		c.value.Subscribe(fn),
		c.errors.Subscribe(fn),
		c.dirty.Subscribe(fn),
		c.touched.Subscribe(fn),
	}
	return func() {
		for _, stop := range stops {
			stop()
		}
	}
}
