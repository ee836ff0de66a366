// Package repositories implements SQLite persistence for the client-owned state.
//
// The backend owns every domain entity; the client only keeps what must survive a restart:
//   - [SessionRepository] : session cookies and access token per backend base URL
//   - [CurrentRoomRepository] : the single current-room pointer written by the room lifecycle controller
//
// Queries go through sqlx with struct scanning. Multi-table writes run in one transaction via inTx.
package repositories
