// Package store provides persistent storage for the backend using SQLite.
//
// # Architecture
//
// The store package uses an interface-driven architecture with specialized
// interfaces:
//
//   - UserStore: user accounts (create, lookup by id/email)
//   - SessionStore: the single encrypted agent credential record
//   - DetailStore: extracted conversation detail entries
//
// SQLiteStore implements all interfaces in a single struct, allowing easy
// composition while maintaining clear interface boundaries.
//
// # Data Models
//
//   - User: registered end user with a bcrypt password hash
//   - ConversationDetail: one detail section extracted from a structured
//     agent payload, keyed by conversation and user
//
// # Credential Record
//
// The agent_session table is constrained to a single row (id pinned to 1).
// SaveEncryptedSession always upserts that row; GetCurrentSession returns
// an empty string when no record exists. The ciphertext itself is produced
// by the agent package's credential cipher; this package never sees
// plaintext credentials.
package store
