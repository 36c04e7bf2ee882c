// Package guard decides whether a session-gated view may render.
package guard

import "pawmart_web/internal/authbridge"

// Decision is the outcome of evaluating an auth state.
type Decision int

const (
	// Pending means the auth state is still loading; render a placeholder.
	Pending Decision = iota
	// Allowed means a session is present.
	Allowed
	// Denied means no session; redirect to the login route.
	Denied
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Allowed:
		return "allowed"
	default:
		return "denied"
	}
}

// Evaluate maps an auth state to a decision. Nothing but Pending is returned
// while the state is loading.
func Evaluate(st authbridge.State) Decision {
	if st.Loading {
		return Pending
	}
	if st.User == nil {
		return Denied
	}
	return Allowed
}

// EvaluateAdmin is Evaluate followed by the admin re-check used by
// role-gated views. The boolean reports whether the admin check passed.
func EvaluateAdmin(st authbridge.State) (Decision, bool) {
	d := Evaluate(st)
	if d != Allowed {
		return d, false
	}
	return d, st.IsAdmin
}
