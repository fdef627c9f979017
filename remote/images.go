// Copyright 2026 The Glasspane Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"
)

// imageCache holds fetched image data keyed by content hash. Cells
// reference images by hash, so a screen full of the same image costs
// one fetch and one cache slot.
type imageCache struct {
	cache *lru.Cache[[32]byte, []byte]
}

func newImageCache(size int) (*imageCache, error) {
	c, err := lru.New[[32]byte, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("remote: image cache: %w", err)
	}
	return &imageCache{cache: c}, nil
}

func (c *imageCache) get(hash [32]byte) ([]byte, bool) {
	return c.cache.Get(hash)
}

// insert verifies data against its claimed hash before caching.
// Mismatched data is rejected; caching it would pin wrong pixels to
// the hash for the cache's lifetime.
func (c *imageCache) insert(hash [32]byte, data []byte) error {
	if got := blake3.Sum256(data); got != hash {
		return fmt.Errorf("remote: image data hash mismatch: got %x, want %x", got[:4], hash[:4])
	}
	c.cache.Add(hash, data)
	return nil
}
