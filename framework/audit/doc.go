// Package audit writes append-only audit logs, one shared Manager per file.
//
//	m, err := audit.GetInstance("audit.log")
//	if err != nil { ... }
//	_ = m.Log("user 42 signed in")
//
// The file looks like:
//
//	Log started: 2026-10-19 09:30:00
//	2026-10-19 09:30:01: user 42 signed in
//
// The header is written once, when the manager for that file is first
// constructed. Each Log call takes the manager's own lock for the duration
// of one append, so concurrent callers never interleave partial lines.
// Managers for different files share no state and never block each other.
package audit
