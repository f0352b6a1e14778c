// Package http provides HTTP handlers and middleware for the rehearsal API.
//
// The router exposes the following endpoints under /api:
//   - POST /api/auth/login: issues a JWT. Body: {"username","password"}.
//     Response: {"token","user"}. The token is presented on later requests as
//     an Authorization bearer header.
//   - POST /api/auth/register/{token}: consumes an email invitation and
//     creates the member account. Public, no bearer token required.
//   - GET /api/users, POST /api/users, GET/PUT/DELETE /api/users/{id}:
//     administrator controlled account management exchanging the `userDTO`
//     payload defined in user_handler.go.
//   - GET /api/rehearsals, POST /api/rehearsals, GET/PUT/DELETE
//     /api/rehearsals/{id}: calendar management exchanging the `rehearsalDTO`
//     payload defined in rehearsal_handler.go. DELETE honors the
//     `all=true` query flag to remove a whole recurring series, and PUT honors
//     the `update_all_recurring` body flag to shift one.
//   - POST /api/rehearsals/bulk: creates standalone rehearsals for an explicit
//     date list, reporting skipped dates.
//   - POST /api/rehearsals/manage: purges past rehearsals and appends one new
//     occurrence a week after the latest remaining date.
//   - GET /api/responses, POST /api/responses, GET/PUT /api/responses/{id}:
//     attendance management exchanging the `responseDTO` payload defined in
//     response_handler.go.
//   - GET /api/bands, POST /api/bands, GET /api/bands/{id},
//     GET/POST /api/bands/{id}/members: band and membership management.
//   - GET /api/invitations, POST /api/invitations, DELETE
//     /api/invitations/{id}: administrator controlled email invitations.
//   - POST /api/email/send: triggers the weekly digest delivery on demand.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
