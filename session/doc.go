// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns one connection to a mux daemon and multiplexes
// every pane's traffic over it.
//
// A single reader goroutine decodes incoming frames and dispatches
// them: responses are matched to pending calls by correlation serial,
// pushes (serial 0) are handed to the handler attached for their pane.
// That one goroutine is the ordering point that makes "authoritative
// update wins over prediction" a well-ordered operation instead of a
// race.
//
// A response whose serial is unknown (the caller gave up, or the ids
// reset) is logged and dropped. A push for a pane with no attached
// handler is dropped the same way; both are ordinary races on an
// asynchronous link, not corruption. Connection loss fails every
// pending call with ErrTransportClosed; the session never retries on
// its own, since replaying a side-effecting request like a paste is
// worse than surfacing the failure.
package session
