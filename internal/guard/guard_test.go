package guard

import (
	"testing"

	"pawmart_web/internal/authbridge"
	"pawmart_web/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	user := &domain.Session{Email: "ann@example.com"}
	tests := []struct {
		name  string
		state authbridge.State
		want  Decision
	}{
		{"loading without user", authbridge.State{Loading: true}, Pending},
		{"loading with user", authbridge.State{Loading: true, User: user}, Pending},
		{"resolved without user", authbridge.State{}, Denied},
		{"resolved with user", authbridge.State{User: user}, Allowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Evaluate(tc.state))
		})
	}
}

func TestEvaluateAdmin(t *testing.T) {
	user := &domain.Session{Email: "ann@example.com"}

	d, ok := EvaluateAdmin(authbridge.State{User: user, IsAdmin: false})
	assert.Equal(t, Allowed, d)
	assert.False(t, ok)

	d, ok = EvaluateAdmin(authbridge.State{User: user, IsAdmin: true})
	assert.Equal(t, Allowed, d)
	assert.True(t, ok)

	d, ok = EvaluateAdmin(authbridge.State{Loading: true, IsAdmin: true})
	assert.Equal(t, Pending, d)
	assert.False(t, ok)
}
