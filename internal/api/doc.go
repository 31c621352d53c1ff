// Package api exposes the backend over HTTP.
//
// # Endpoints
//
//	GET    /health
//	POST   /api/v1/auth/register
//	POST   /api/v1/auth/login
//	POST   /api/v1/conversation                  (auth)
//	POST   /api/v1/conversation/{id}/message     (auth)
//	GET    /api/v1/conversation/{id}/detail      (auth)
//	DELETE /api/v1/conversation/{id}             (auth)
//
// Authenticated routes require an Authorization: Bearer header carrying a
// JWT issued by the login endpoint; the conversation {id} is the
// agent-assigned session id.
//
// # Error mapping
//
//   - validation failures -> 400
//   - unknown user/conversation -> 404
//   - agent upstream or token refresh failures -> 502 with a generic body
//   - anything else -> 500
//
// Upstream transport detail (status codes, response bodies) is logged at
// this boundary and never included in responses.
package api
