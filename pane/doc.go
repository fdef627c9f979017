// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package pane defines the terminal pane capability surface and the
// value types shared by every layer above the codec: identifiers,
// geometry, screen line content, keyboard and mouse input, and
// scrollback search.
//
// A Pane may be backed locally or by a proxy that forwards every call
// to a remote multiplexing daemon. Callers depend only on the
// interface and cannot tell the two apart except by latency.
package pane
