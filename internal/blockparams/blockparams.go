// Copyright 2026 The gemm Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package blockparams is the cache-block-size oracle: given a problem
// shape and a kernel's (MR, NR) tile, it chooses (mc, nc, kc) so that
// packed panels fit the L1/L2/L3 working sets. It is a pure, memoised
// function, consumed as a black-box collaborator by the blocked driver.
package blockparams

import "sync"

// Params is the (mc, nc, kc) triple the driver uses to step its three
// outer loops.
type Params struct {
	Mc int
	Nc int
	Kc int
}

// Assumed cache capacities, conservative enough to be safe across the
// common x86-64/ARM64 desktop and server parts this engine targets.
const (
	l1Bytes = 32 * 1024
	l2Bytes = 1024 * 1024
	l3Bytes = 24 * 1024 * 1024
)

type cacheKey struct {
	mr, nr, elemSize int
}

var (
	mu    sync.Mutex
	cache = map[cacheKey]Params{}
)

// Oracle returns (mc, nc, kc) for the given problem and kernel shape,
// per spec §4.2: mc a multiple of mr, nc a multiple of nr, a kc×nr
// panel of R fitting L1, an mc×kc panel of L fitting L2, and an nc×kc
// panel of R fitting L3.
//
// The base blocking only depends on (mr, nr, elemSize), so results are
// cached across calls with the same kernel shape and element size; m,
// n, k only clip the cached base values down to the problem's extent.
func Oracle(m, n, k, mr, nr, elemSize int) Params {
	base := baseParams(mr, nr, elemSize)

	kc := clampToMultipleFloor(base.Kc, k, 1)
	mc := clampToMultipleFloor(base.Mc, m, mr)
	nc := clampToMultipleFloor(base.Nc, n, nr)

	return Params{Mc: mc, Nc: nc, Kc: kc}
}

// baseParams derives (Mc, Nc, Kc) for a kernel shape from the assumed
// cache capacities, independent of the problem's actual m, n, k.
func baseParams(mr, nr, elemSize int) Params {
	key := cacheKey{mr, nr, elemSize}

	mu.Lock()
	if p, ok := cache[key]; ok {
		mu.Unlock()
		return p
	}
	mu.Unlock()

	// kc: a kc×nr panel of R (packed) must fit comfortably in L1,
	// leaving room for the accumulator tile and the current L column.
	kc := (l1Bytes / 2) / (nr * elemSize)
	kc = roundDownNonzero(kc, 1)

	// mc: an mc×kc panel of L (packed) must fit in L2.
	mc := l2Bytes / (kc * elemSize)
	mc = roundDownNonzero(mc, mr)

	// nc: an nc×kc panel of R (packed) must fit in L3.
	nc := l3Bytes / (kc * elemSize)
	nc = roundDownNonzero(nc, nr)

	p := Params{Mc: mc, Nc: nc, Kc: kc}

	mu.Lock()
	cache[key] = p
	mu.Unlock()

	return p
}

// roundDownNonzero rounds v down to the nearest multiple of unit,
// never returning less than unit.
func roundDownNonzero(v, unit int) int {
	if unit <= 0 {
		unit = 1
	}
	v = (v / unit) * unit
	if v < unit {
		v = unit
	}
	return v
}

// clampToMultipleFloor clips base down to extent (rounded up to the
// next multiple of unit so the clipped value still divides evenly),
// but never below one unit, and never above base.
func clampToMultipleFloor(base, extent, unit int) int {
	if unit <= 0 {
		unit = 1
	}
	if extent <= 0 {
		return unit
	}
	if extent >= base {
		return base
	}
	clipped := ((extent + unit - 1) / unit) * unit
	if clipped < unit {
		clipped = unit
	}
	if clipped > base {
		clipped = base
	}
	return clipped
}
