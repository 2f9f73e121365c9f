package http

import (
	"context"

	"github.com/example/leavedesk/internal/application"
)

type contextKey string

const (
	principalContextKey    contextKey = "principal"
	eventIDContextKey      contextKey = "event_id"
	userIDContextKey       contextKey = "user_id"
	projectIDContextKey    contextKey = "project_id"
	assignmentIDContextKey contextKey = "assignment_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithEventID injects the event identifier resolved from the request path.
func ContextWithEventID(ctx context.Context, eventID string) context.Context {
	return context.WithValue(ctx, eventIDContextKey, eventID)
}

// EventIDFromContext extracts an event identifier previously associated with the context.
func EventIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(eventIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithProjectID injects the project identifier resolved from the request path.
func ContextWithProjectID(ctx context.Context, projectID string) context.Context {
	return context.WithValue(ctx, projectIDContextKey, projectID)
}

// ProjectIDFromContext extracts a project identifier previously associated with the context.
func ProjectIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(projectIDContextKey).(string)
	return id, ok
}

// ContextWithAssignmentID injects the assignment identifier resolved from the request path.
func ContextWithAssignmentID(ctx context.Context, assignmentID string) context.Context {
	return context.WithValue(ctx, assignmentIDContextKey, assignmentID)
}

// AssignmentIDFromContext extracts an assignment identifier previously associated with the context.
func AssignmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(assignmentIDContextKey).(string)
	return id, ok
}
