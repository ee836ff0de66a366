// Package models defines the entities exchanged with the study backend and the records persisted locally.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): snapshots decoded from backend responses
//   - [User] : the authenticated member's profile
//   - [Group], [GroupMember] : study groups and their membership
//   - [StudyRoom] : time-boxed rooms scoped to a group
//   - [OpenStudyRoom] : capacity-limited rooms anyone can join
//   - [Checklist], [MonthSummary] : per-date to-do items and the dates that have any
//   - [TimerStatus], [Participant] : presence and timer snapshots of a group room
//   - [ChatMessage] : stored chat history
//
// 2. Persistent Entities: client-owned records stored in SQLite
//   - [CurrentRoom] : the room the user believes they are joined to
//   - [StoredSession] : cookies and access token of a backend session
//
// Backend ids arrive as JSON numbers or strings depending on the endpoint, so every id is an [ID].
// Paginated and bare-array list responses are normalized by [DecodePage].
//
// The Repository[T] interface defines standard CRUD operations for database access.
package models
