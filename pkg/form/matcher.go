package form

// ErrorStateMatcher decides whether a control is displayed as invalid.
// parent is the group the control is rendered in.
type ErrorStateMatcher interface {
	IsErrorState(control AbstractControl, parent *Group) bool
}

// ErrorStateMatcherFunc is a function that implements ErrorStateMatcher.
type ErrorStateMatcherFunc func(control AbstractControl, parent *Group) bool

func (f ErrorStateMatcherFunc) IsErrorState(control AbstractControl, parent *Group) bool {
	return f(control, parent)
}

// DirtyGroupMatcher shows an error once the parent group has been edited and
// either the control itself or the group (e.g. a cross-field rule) is
// invalid. A nil control or a nil parent is never in error state.
type DirtyGroupMatcher struct{}

func (DirtyGroupMatcher) IsErrorState(control AbstractControl, parent *Group) bool {
	if control == nil || parent == nil || !parent.Dirty() {
		return false
	}
	return control.Invalid() || parent.Invalid()
}
