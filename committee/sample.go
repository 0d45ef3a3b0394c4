// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package committee

import (
	"math/rand"

	"github.com/luxfi/ids"
)

// sample draws up to size distinct member node ids, weighted by stake and
// without replacement, seeded by the member count and size.
func (c *Committee) sample(size int) ([]ids.NodeID, error) {
	if size < 0 {
		return nil, ErrNegativeSampleSize
	}
	if size > len(c.members) {
		size = len(c.members)
	}

	remaining := make([]Member, len(c.members))
	copy(remaining, c.members)

	src := rand.New(rand.NewSource(int64(len(c.members)) ^ int64(size)))
	out := make([]ids.NodeID, 0, size)
	for len(out) < size && len(remaining) > 0 {
		var total uint64
		for _, m := range remaining {
			total += m.Stake
		}
		target := src.Uint64() % total
		var cum uint64
		for i, m := range remaining {
			cum += m.Stake
			if target < cum {
				out = append(out, m.NodeID)
				remaining = append(remaining[:i], remaining[i+1:]...)
				break
			}
		}
	}
	return out, nil
}
