// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"golang.org/x/time/rate"

	"github.com/glasspane/glasspane/lib/clock"
)

// fetchLimiter gates stale-row refetch requests. Scrolling naturally
// wants to refetch every row it passes, which can saturate a slow
// link; denied fetches stay stale and are retried on a later poll.
type fetchLimiter struct {
	lim *rate.Limiter
	clk clock.Clock
}

// newFetchLimiter allows perSecond fetch requests per second with a
// burst of one, so a one-second window admits at most perSecond+1.
func newFetchLimiter(clk clock.Clock, perSecond float64) *fetchLimiter {
	return &fetchLimiter{
		lim: rate.NewLimiter(rate.Limit(perSecond), 1),
		clk: clk,
	}
}

func (l *fetchLimiter) allow() bool {
	return l.lim.AllowN(l.clk.Now(), 1)
}
