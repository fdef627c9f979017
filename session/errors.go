// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
)

var (
	// ErrTransportClosed reports that the connection failed or was
	// closed while a call was outstanding.
	ErrTransportClosed = errors.New("session: transport closed")

	// ErrCallTimeout reports that a single call exceeded the
	// configured timeout. The connection itself stays up.
	ErrCallTimeout = errors.New("session: call timed out")
)

// RemoteError is an application-level failure reported by the daemon
// for one request, such as a missing pane or an invalid search
// pattern.
type RemoteError struct {
	Reason string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("session: remote error: %s", e.Reason)
}

// VersionMismatchError reports that the daemon speaks an incompatible
// protocol version.
type VersionMismatchError struct {
	Client uint64
	Daemon uint64
	Build  string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("session: protocol version mismatch: client %d, daemon %d (%s)",
		e.Client, e.Daemon, e.Build)
}

// UnexpectedResponseError reports a well-formed response of the wrong
// type for the request it was correlated with.
type UnexpectedResponseError struct {
	Got string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("session: unexpected response type %s", e.Got)
}
