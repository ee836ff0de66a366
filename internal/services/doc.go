// Package services implements typed access to the study backend's REST API.
//
// # HTTP Client
//
// [APIClient] is the single HTTP wrapper every service goes through. It always carries a cookie jar so the
// server-managed session cookie round-trips, and attaches a bearer token through an [oauth2.Transport] when the
// backend issued one. Tokens are JWTs whose exp claim is read without verification; an expired token is dropped
// instead of being sent.
//
// Request bodies are JSON, or multipart/form-data when a [*Multipart] is passed, in which case the writer's
// boundary content type is used. Responses decode into any JSON target, a *string for text bodies, or nil.
//
// # Error Handling
//
// Non-2xx responses become an [*APIError] whose Message is the server's "message" or "error" field, or
// "HTTP error, status <n>" when neither is present:
//   - [shared.ErrUnauthorized] : 401, the session is invalid
//   - [shared.ErrAPIRequest] : any other status, transport failures and undecodable bodies
//
// On a 401 the client consults its [Navigator]; unless the current route is on the public allow-list it is
// navigated to /login. Nothing is retried.
//
// # Keep-alive Notifications
//
// [APIClient.Beacon] sends a request on a detached context and returns immediately. Its outcome is only logged.
//
// # Services
//
//   - [AuthService] : login, logout, registration, profile mutations
//   - [GroupService] : groups and membership
//   - [OpenStudyService] : open rooms
//   - [StudyRoomService] : group rooms and their participants
//   - [TimerService] : the personal study timer
//   - [ChecklistService] : per-date checklist items and month summaries
//   - [ChatService] : stored chat history and image upload
//
// List endpoints answer with either a paginated envelope or a bare array; both are normalized through
// [models.DecodePage].
package services
