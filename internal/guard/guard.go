// Package guard decides whether a page or command may run for the current
// session, and where to send the user when it may not.
package guard

import (
	"github.com/folioadmin/folioadmin/internal/session"
)

const (
	DefaultLoginPath = "/login"
	DefaultHomePath  = "/"
)

// Decision is the outcome of a guard for one render.
type Decision struct {
	// Render is true when the guarded content may be produced.
	Render bool
	// Redirect is the destination to navigate to, or "" to stay.
	Redirect string
}

// Guard is the one capability both variants share.
type Guard interface {
	Decide(state session.State) Decision
}

// AuthenticatedOnly admits authenticated sessions and sends everyone else to
// the login page. It never renders for an unauthenticated session.
type AuthenticatedOnly struct {
	LoginPath string
}

func (g AuthenticatedOnly) Decide(state session.State) Decision {
	if state.IsAuthenticated {
		return Decision{Render: true}
	}
	return Decision{Redirect: orDefault(g.LoginPath, DefaultLoginPath)}
}

// PublicOnly admits unauthenticated sessions and sends authenticated ones
// home. By default it blocks rendering while redirecting; with Passthrough
// the content is still rendered and the redirect follows it.
type PublicOnly struct {
	HomePath    string
	Passthrough bool
}

func (g PublicOnly) Decide(state session.State) Decision {
	if !state.IsAuthenticated {
		return Decision{Render: true}
	}
	return Decision{
		Render:   g.Passthrough,
		Redirect: orDefault(g.HomePath, DefaultHomePath),
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
