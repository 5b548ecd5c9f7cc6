package form

import "testing"

func TestDirtyGroupMatcher(t *testing.T) {
	m := DirtyGroupMatcher{}

	t.Run("nil control", func(t *testing.T) {
		if m.IsErrorState(nil, NewGroup()) {
			t.Error("nil control should not be in error state")
		}
	})

	t.Run("orphan control", func(t *testing.T) {
		c := newControl("orphan", "", []Validator{Required("")})
		c.Validate()
		if m.IsErrorState(c, nil) {
			t.Error("control without a group should not be in error state")
		}
	})

	t.Run("nil parent", func(t *testing.T) {
		g, name, _, _ := newPasswordGroup()
		name.Input("Jane3")
		if !g.Dirty() || !name.Invalid() {
			t.Fatal("precondition: dirty group with an invalid control")
		}
		if m.IsErrorState(name, nil) {
			t.Error("nil parent should not be in error state")
		}
	})

	t.Run("pristine group hides errors", func(t *testing.T) {
		g, name, _, _ := newPasswordGroup()
		if !name.Invalid() {
			t.Fatal("precondition: empty name is invalid")
		}
		if m.IsErrorState(name, g) {
			t.Error("errors should be hidden until the group is dirty")
		}
	})

	t.Run("invalid control in dirty group", func(t *testing.T) {
		g, name, _, _ := newPasswordGroup()
		name.Input("Jane3")
		if !m.IsErrorState(name, g) {
			t.Error("invalid control in dirty group should be in error state")
		}
	})

	t.Run("group mismatch surfaces on valid controls", func(t *testing.T) {
		g, name, password, confirm := newPasswordGroup()
		name.Input("Jane")
		password.Input("secret123")
		confirm.Input("different")

		if confirm.Invalid() {
			t.Fatal("precondition: confirm control itself is valid")
		}
		if !m.IsErrorState(confirm, g) {
			t.Error("cross-field error should flag the control once the group is dirty")
		}
	})

	t.Run("valid dirty group", func(t *testing.T) {
		g, name, password, confirm := newPasswordGroup()
		name.Input("Jane")
		password.Input("secret123")
		confirm.Input("secret123")
		if m.IsErrorState(name, g) || m.IsErrorState(confirm, g) {
			t.Error("valid group should not be in error state")
		}
	})
}

func TestErrorStateMatcherFunc(t *testing.T) {
	var m ErrorStateMatcher = ErrorStateMatcherFunc(func(c AbstractControl, _ *Group) bool {
		return c.Touched()
	})
	g, name, _, _ := newPasswordGroup()
	if m.IsErrorState(name, g) {
		t.Error("untouched control should not match")
	}
	name.Blur()
	if !m.IsErrorState(name, g) {
		t.Error("touched control should match")
	}
}
