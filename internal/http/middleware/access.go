package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"boardstack-api/internal/auth"
	"boardstack-api/internal/authz"
	"boardstack-api/internal/domain"
	"boardstack-api/internal/http/httperr"
	"boardstack-api/internal/observability/logger"
	"boardstack-api/internal/telemetry"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	chainContextKey contextKey = "authz_chain"
	rolesContextKey contextKey = "user_roles"
)

// AccessDeps bundles the collaborators every access guard needs.
type AccessDeps struct {
	Authorizer *authz.Authorizer
	Users      authz.UserRoleStore
	Metrics    *telemetry.Metrics
}

// Guard is one access check: evaluate resolves the entity chain and decides
// allow or deny. Evaluation has no observable side effects beyond the
// decision, so combinators may run a guard and silently discard a denial.
type Guard struct {
	name     string
	metrics  *telemetry.Metrics
	evaluate func(r *http.Request) (*authz.Chain, *authz.Error)
}

// Middleware turns the guard into chi middleware: on allow the resolved
// chain is attached to the request context for downstream handlers, on deny
// the classified error terminates the request.
func (g Guard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := logger.GetLogger(ctx)

			chain, aerr := g.evaluate(r)

			if g.metrics != nil {
				g.metrics.RecordAuthzDecision(ctx, g.name, aerr == nil)
			}

			if aerr != nil {
				log.Debug(ctx, "access check failed",
					logger.Module("authz"), logger.Action(g.name),
					zap.String("code", string(aerr.Code)),
				)
				httperr.WriteAuthzError(w, ctx, aerr)
				return
			}

			ctx = context.WithValue(ctx, chainContextKey, chain)
			if chain != nil && chain.Workspace != nil {
				ctx = logger.SetWorkspaceIDInContext(ctx, chain.Workspace.ID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ChainFromContext retrieves the resolved entity chain attached by a guard.
func ChainFromContext(ctx context.Context) (*authz.Chain, bool) {
	chain, ok := ctx.Value(chainContextKey).(*authz.Chain)
	return chain, ok
}

// LoadUserRoles fetches the authenticated user's aggregate role set once per
// request and caches it in the context, so guards never go back to the store
// for role data no matter how many resources the request touches.
func LoadUserRoles(users authz.UserRoleStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, ok := auth.GetClaims(ctx)
			if !ok {
				httperr.Unauthorized401(w, ctx, httperr.ErrCodeMissingAuthorization, "authentication required")
				return
			}

			roles, err := users.GetUserRoles(ctx, claims.UserID)
			if err != nil {
				httperr.WriteAuthzError(w, ctx, authz.ErrCollaboratorFailure(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, rolesContextKey, roles)))
		})
	}
}

// roleSet returns the request's cached role set, falling back to a store
// fetch when LoadUserRoles is not in the chain (guard-only tests, AnyOf
// branches mounted outside the main route tree).
func (d AccessDeps) roleSet(r *http.Request) (*domain.UserRoleSet, *authz.Error) {
	ctx := r.Context()

	if roles, ok := ctx.Value(rolesContextKey).(*domain.UserRoleSet); ok {
		return roles, nil
	}

	claims, ok := auth.GetClaims(ctx)
	if !ok {
		return nil, authz.ErrCollaboratorFailure(errors.New("claims missing from request context"))
	}

	roles, err := d.Users.GetUserRoles(ctx, claims.UserID)
	if err != nil {
		return nil, authz.ErrCollaboratorFailure(err)
	}
	return roles, nil
}

// =====================================================
// Per-kind guards
// =====================================================

// RequireWorkspaceAccess guards a workspace operation. suffix is the
// operation path under the /workspace namespace (e.g. "/:id/members"); the
// strict matrix check runs against it with the request's method.
func RequireWorkspaceAccess(deps AccessDeps, suffix string) Guard {
	return requireHierarchyAccess(deps, authz.KindWorkspace, "workspaceId", suffix)
}

// RequireSpaceAccess guards a space operation with the strict matrix check.
func RequireSpaceAccess(deps AccessDeps, suffix string) Guard {
	return requireHierarchyAccess(deps, authz.KindSpace, "spaceId", suffix)
}

// RequireBoardAccess guards a board operation with the strict matrix check.
func RequireBoardAccess(deps AccessDeps, suffix string) Guard {
	return requireHierarchyAccess(deps, authz.KindBoard, "boardId", suffix)
}

func requireHierarchyAccess(deps AccessDeps, kind authz.Kind, param, suffix string) Guard {
	path := kind.PathPrefix() + suffix
	return Guard{
		name:    "require_" + string(kind) + "_access",
		metrics: deps.Metrics,
		evaluate: func(r *http.Request) (*authz.Chain, *authz.Error) {
			roles, aerr := deps.roleSet(r)
			if aerr != nil {
				return nil, aerr
			}
			id := extractResourceID(r, param)
			return deps.Authorizer.AuthorizeResource(r.Context(), roles, kind, id, path, r.Method)
		},
	}
}

// RequireTaskAccess guards task visibility: direct access for assignee,
// reporter or watcher, otherwise any resolvable workspace role suffices.
func RequireTaskAccess(deps AccessDeps) Guard {
	return Guard{
		name:    "require_task_access",
		metrics: deps.Metrics,
		evaluate: func(r *http.Request) (*authz.Chain, *authz.Error) {
			roles, aerr := deps.roleSet(r)
			if aerr != nil {
				return nil, aerr
			}
			id := extractResourceID(r, "taskId")
			return deps.Authorizer.AuthorizeTaskRead(r.Context(), roles, id)
		},
	}
}

// RequireTaskEdit guards task mutation: direct access for assignee or
// reporter only, otherwise the strict matrix check against the operation
// path and request method.
func RequireTaskEdit(deps AccessDeps, suffix string) Guard {
	path := authz.KindTask.PathPrefix() + suffix
	return Guard{
		name:    "require_task_edit",
		metrics: deps.Metrics,
		evaluate: func(r *http.Request) (*authz.Chain, *authz.Error) {
			roles, aerr := deps.roleSet(r)
			if aerr != nil {
				return nil, aerr
			}
			id := extractResourceID(r, "taskId")
			return deps.Authorizer.AuthorizeTaskWrite(r.Context(), roles, id, path, r.Method)
		},
	}
}

// RequireResourceOwner guards user-owned, hierarchy-independent resources:
// the authenticated user id must equal the named route param or body field.
func RequireResourceOwner(deps AccessDeps, field string) Guard {
	return Guard{
		name:    "require_resource_owner",
		metrics: deps.Metrics,
		evaluate: func(r *http.Request) (*authz.Chain, *authz.Error) {
			claims, ok := auth.GetClaims(r.Context())
			if !ok {
				return nil, authz.ErrCollaboratorFailure(errors.New("claims missing from request context"))
			}
			owner := extractResourceID(r, field)
			if owner == "" {
				return nil, authz.ErrMissingResourceID()
			}
			if claims.UserID != owner {
				return nil, authz.ErrPermissionDenied("", r.URL.Path, r.Method)
			}
			return &authz.Chain{}, nil
		},
	}
}

// Resolving augments a hierarchy-independent guard (RequireResourceOwner)
// so that a grant still carries the entity chain downstream handlers
// expect: on allow, the entity named by param is resolved and its chain
// attached. Resolution failures surface as-is, so a grant for a missing
// entity is still a NotFound.
func (g Guard) Resolving(deps AccessDeps, kind authz.Kind, param string) Guard {
	return Guard{
		name:    g.name,
		metrics: g.metrics,
		evaluate: func(r *http.Request) (*authz.Chain, *authz.Error) {
			if _, aerr := g.evaluate(r); aerr != nil {
				return nil, aerr
			}
			id := extractResourceID(r, param)
			return deps.Authorizer.ResolveChain(r.Context(), kind, id)
		},
	}
}

// AnyOf combines guards with OR semantics: the first one to allow wins and
// its chain is attached; when all deny, the last denial is returned. Guards
// are pure decisions, so losing branches leave no trace on the response.
func AnyOf(guards ...Guard) Guard {
	var metrics *telemetry.Metrics
	if len(guards) > 0 {
		metrics = guards[0].metrics
	}
	return Guard{
		name:    "any_of",
		metrics: metrics,
		evaluate: func(r *http.Request) (*authz.Chain, *authz.Error) {
			var last *authz.Error
			for _, g := range guards {
				chain, aerr := g.evaluate(r)
				if aerr == nil {
					return chain, nil
				}
				// Availability failures abort immediately: a degraded
				// store must not look like "this branch denied".
				if aerr.Code == authz.CodeCollaboratorFailure {
					return nil, aerr
				}
				last = aerr
			}
			if last == nil {
				last = authz.ErrPermissionDenied("", r.URL.Path, r.Method)
			}
			return nil, last
		},
	}
}

// =====================================================
// Resource id extraction
// =====================================================

// extractResourceID finds the resource id in the supported request
// locations, first non-empty wins: the named route parameter, the generic
// "id" route parameter, then the named JSON body field. The body is restored
// so downstream decoding still works.
func extractResourceID(r *http.Request, name string) string {
	if id := chi.URLParam(r, name); id != "" {
		return id
	}
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return bodyField(r, name)
}

func bodyField(r *http.Request, name string) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}

	var value string
	if err := json.Unmarshal(fields[name], &value); err != nil {
		return ""
	}
	return value
}
