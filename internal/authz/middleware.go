package authz

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/meridian-lms/meridian-lms/internal/shared"
)

// ActorSource resolves a user id from the session into a full Actor with
// role, department and section assignments.
type ActorSource interface {
	ActorByID(ctx context.Context, id int64) (*Actor, error)
}

// DenialCounter receives every gate denial, keyed by role and rule.
type DenialCounter interface {
	CountDenial(role, rule string)
}

// Middleware gates HTTP routes on the capability table. Resource-level checks
// stay in the services; this layer only answers page/action questions and
// stores the resolved actor in the request context.
type Middleware struct {
	Actors  ActorSource
	Logger  *slog.Logger
	Denials DenialCounter
}

func (m Middleware) countDenial(role Role, rule string) {
	if m.Denials != nil {
		m.Denials.CountDenial(string(role), rule)
	}
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor placed by the middleware. Nil when the
// request never passed an authorization gate.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorContextKey{}).(*Actor)
	return actor
}

// RequireAuth resolves the session user into an Actor and stores it in the
// request context. Requests without a resolvable actor are rejected.
func (m Middleware) RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.resolveActor(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequirePage ensures the current actor's role grants the page.
func (m Middleware) RequirePage(page Page) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.resolveActor(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			allowed := HasPageAccess(actor.Role, page)
			LogDecision(m.Logger, Decision{
				ActorID:  actor.ID,
				Role:     actor.Role,
				Resource: "page:" + string(page),
				Rule:     "page_access",
				Allowed:  allowed,
			})
			if !allowed {
				m.countDenial(actor.Role, "page_access")
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequireAction ensures the current actor's role grants the CRUD action.
func (m Middleware) RequireAction(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.resolveActor(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			allowed := HasActionAccess(actor.Role, action)
			LogDecision(m.Logger, Decision{
				ActorID:  actor.ID,
				Role:     actor.Role,
				Resource: "action:" + string(action),
				Rule:     "action_access",
				Allowed:  allowed,
			})
			if !allowed {
				m.countDenial(actor.Role, "action_access")
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// RequireRoles ensures the current actor holds one of the listed roles.
func (m Middleware) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := m.resolveActor(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			allowed := false
			for _, role := range roles {
				if actor.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				LogDecision(m.Logger, Decision{
					ActorID:  actor.ID,
					Role:     actor.Role,
					Resource: "roles",
					Rule:     "role_membership",
					Allowed:  false,
				})
				m.countDenial(actor.Role, "role_membership")
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

func (m Middleware) resolveActor(r *http.Request) (*Actor, bool) {
	if actor := ActorFromContext(r.Context()); actor != nil {
		return actor, true
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz parse user id", slog.String("value", raw))
		}
		return nil, false
	}
	actor, err := m.Actors.ActorByID(r.Context(), id)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("authz resolve actor", slog.Any("error", err))
		}
		return nil, false
	}
	if actor == nil {
		return nil, false
	}
	return actor, true
}
