// Package form provides reactive form controls with validation.
//
// # Overview
//
// A Group owns an ordered set of typed controls and optional group-level
// validators. Every control keeps its value, errors, dirty and touched state
// in signals, and re-validates itself and its group on every change.
//
//	group := form.NewGroup()
//	name := form.Add(group, "name", "", form.Required(""), form.PatternRegexp(regexp.MustCompile(`^[a-zA-Z ]+$`), ""))
//	password := form.Add(group, "password", "", form.Required(""))
//	confirm := form.Add(group, "confirmPassword", "", form.Required(""))
//	group.AddValidators(form.FieldsMatch(password, confirm, ""))
//
//	name.Input("Jane Doe") // user edit: value set, control marked dirty
//	name.Blur()            // control marked touched
//
//	if group.Invalid() {
//	    // errors are available per control and on the group
//	}
//
// # Validation
//
// Control validators report errors under a key:
//
//   - required: value is nil or the empty string
//   - pattern: non-empty value does not match the regular expression
//   - custom keys from Custom
//
// Group validators (FieldsMatch reports "notSame") see the whole group.
//
// # Error State
//
// An ErrorStateMatcher decides when a control is rendered as invalid.
// DirtyGroupMatcher waits until the group has been edited, then flags a
// control if either the control or the group is invalid.
package form
