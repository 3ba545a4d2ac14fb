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

// Package scratch sizes and carves up the caller-provided scratch
// region: a shared packed-R buffer and one packed-L buffer per thread,
// laid out by a bump allocator so the packed buffers never come from
// the Go heap (spec §5, §4.6, §7). The driver's small bookkeeping
// slices (the per-thread buffer list, row-band job counts, partition
// ranges) are still heap-allocated during the multiply.
package scratch

import (
	"errors"
	"math/bits"

	"github.com/flatgemm/gemm/internal/blockparams"
	"github.com/flatgemm/gemm/internal/pack"
)

// ErrOverflow is returned by Size when computing the required byte
// count would overflow a machine word — the one recoverable failure
// named in spec §7.
var ErrOverflow = errors.New("gemm: workspace size overflows platform word")

const cacheLineBytes = 64

// Size returns the scratch byte requirement for a problem of shape
// (m, n, k) with the given kernel shape and element size, across up
// to maxThreads threads, per spec §4.6:
//
//	shared R: ceil(kc*NR/simdStride)*simdStride * ceil(nc/NR) elements
//	per-thread L: maxThreads * ceil(kc*MR/simdStride)*simdStride * ceil(mc/MR) elements
//
// both rounded up to the cache line, summed, and reported in bytes.
func Size(m, n, k, mr, nr, elemSize, maxThreads int) (uint64, error) {
	if maxThreads < 1 {
		maxThreads = 1
	}
	p := blockparams.Oracle(m, n, k, mr, nr, elemSize)

	rBlocks := ceilDiv(p.Nc, nr)
	rBlockStride := pack.BlockStride(p.Kc, nr)
	rElems, ok := mulOverflow(rBlocks, rBlockStride)
	if !ok {
		return 0, ErrOverflow
	}

	lBlocks := ceilDiv(p.Mc, mr)
	lBlockStride := pack.BlockStride(p.Kc, mr)
	lElemsPerThread, ok := mulOverflow(lBlocks, lBlockStride)
	if !ok {
		return 0, ErrOverflow
	}
	lElems, ok := mulOverflow(lElemsPerThread, maxThreads)
	if !ok {
		return 0, ErrOverflow
	}

	rBytes, ok := mulOverflowU64(uint64(rElems), uint64(elemSize))
	if !ok {
		return 0, ErrOverflow
	}
	lBytes, ok := mulOverflowU64(uint64(lElems), uint64(elemSize))
	if !ok {
		return 0, ErrOverflow
	}

	rBytes = alignUp(rBytes, cacheLineBytes)
	lBytes = alignUp(lBytes, cacheLineBytes)

	total, carry := addOverflow(rBytes, lBytes)
	if carry {
		return 0, ErrOverflow
	}
	return total, nil
}

// SizeBothOrientations returns the maximum of Size(m,n,...) and
// Size(n,m,...), because stride canonicalisation (spec §4.1 step 4)
// may transpose the problem before the driver ever sees it; a caller
// sizing scratch ahead of time must budget for whichever orientation
// canonicalisation picks.
func SizeBothOrientations(m, n, k, mr, nr, elemSize, maxThreads int) (uint64, error) {
	a, err := Size(m, n, k, mr, nr, elemSize, maxThreads)
	if err != nil {
		return 0, err
	}
	b, err := Size(n, m, k, mr, nr, elemSize, maxThreads)
	if err != nil {
		return 0, err
	}
	if b > a {
		return b, nil
	}
	return a, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func alignUp(v uint64, align uint64) uint64 {
	return (v + align - 1) / align * align
}

func mulOverflow(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	r := a * b
	if r/b != a {
		return 0, false
	}
	return r, true
}

func mulOverflowU64(a, b uint64) (uint64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, false
	}
	return lo, true
}

func addOverflow(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum < a
}

// Arena is a bump allocator carving fixed-size regions out of a single
// caller-provided []byte, so the packed buffers need no heap
// allocation. Each carve is aligned up to the cache line before
// handing out the slice.
type Arena struct {
	buf []byte
	off int
}

// NewArena wraps buf for bump allocation.
func NewArena(buf []byte) *Arena {
	return &Arena{buf: buf}
}

// Carve returns an aligned []T of length n backed by the arena, or
// panics if the arena has been exhausted — scratch-size exhaustion is
// a precondition violation (insufficient scratch was passed), not a
// recoverable error, per spec §7.
func Carve[T any](a *Arena, n int) []T {
	var zero T
	elemSize := sizeOf(zero)

	a.off = alignUpInt(a.off, cacheLineBytes)
	need := n * elemSize
	if a.off+need > len(a.buf) {
		panic("gemm: scratch region exhausted")
	}
	region := a.buf[a.off : a.off+need]
	a.off += need

	return bytesToSlice[T](region, n)
}

func alignUpInt(v, align int) int {
	return (v + align - 1) / align * align
}
