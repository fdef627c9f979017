// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

// Package remote implements the client side of a pane hosted by a mux
// daemon: a proxy satisfying the pane capability surface, and a
// predictive mirror of the pane's screen.
//
// The mirror keeps an LRU cache of authoritative rows and an overlay
// of predicted cells keyed by input serial. Predictions give instant
// local echo on a slow link; they render with a distinguishing
// underline and are discarded the moment an authoritative update
// covering their serial arrives. The authoritative copy always wins
// outright, so the mirror converges regardless of how wrong a
// prediction was.
package remote
