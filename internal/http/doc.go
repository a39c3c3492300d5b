// Package http exposes the club portal over JSON and Server-Sent Events.
//
// The router exposes the following endpoints:
//   - POST /sessions: login. Body {"email","password"}. Responds with
//     {"token","expires_at","user"}; the token is also set as the
//     `session_token` cookie.
//   - DELETE /sessions/current: revokes the token carried by the Authorization
//     header or the cookie and clears the cookie.
//   - GET /trainings?team=, POST /trainings, GET/PUT/DELETE /trainings/{id}:
//     training boards. Every board carries the caller's status, whether the
//     session is closed, the action the button offers and the roster split
//     into signed up, withdrawn and no response. Mutations require admin.
//   - POST /trainings/{id}/attendance: one press of the attendance button.
//     Body {"action":"sign_up"|"withdraw","reason"}. A closed session yields
//     409 ATTENDANCE_CLOSED and a stale action 409 INVALID_TRANSITION.
//   - GET /trainings/stream?team=: text/event-stream with one `snapshot`
//     event per change. Each event replaces the previous one entirely.
//   - GET /players?team=, POST /players, GET/PUT/DELETE /players/{id},
//     GET /players/{id}/attendance-summary: the roster.
//   - GET /users, POST /users, DELETE /users/{id}: account management for
//     administrators.
//   - GET /healthz: liveness including a storage ping.
//
// User facing messages are Spanish. Request/response DTOs live alongside
// their handlers.
package http
