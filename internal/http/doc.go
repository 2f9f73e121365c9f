// Package http provides HTTP handlers and middleware for the attendance API.
//
// The router exposes the following endpoints:
//   - POST /sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","principal":{"user_id","role"}} with the
//     token also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content
//     and clears the cookie.
//   - POST /users: open self sign-up exchanging the `userDTO` payload defined
//     in user_handler.go. GET /users, GET /users/me and GET /users/{id} serve
//     the directory to authenticated principals.
//   - GET /users/{id}/meal-vouchers/{month}: reports the monthly meal-voucher
//     entitlement. The month is a path segment (1-12); an optional `year`
//     query parameter overrides the current year.
//   - POST /events, GET /events, GET /events/{id}: attendance event
//     submission and listing exchanging the `eventDTO` payload defined in
//     event_handler.go. Employees only ever see their own events.
//   - POST /events/{id}/validate, POST /events/{id}/decline: approval
//     transitions, restricted to administrators and to project managers
//     assigned to the requesting employee on the event date.
//   - POST /projects, GET /projects, GET /projects/{id} and the
//     /project-assignments counterparts: project and assignment management
//     exchanging the payloads defined in project_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
