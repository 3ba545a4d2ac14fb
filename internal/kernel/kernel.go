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

// Package kernel holds the micro-kernel set and the dispatch tables
// that index it. Spec treats a micro-kernel's internal arithmetic as
// an out-of-scope black box; only its shape and table-indexing
// contract are specified (§3, §4.4, §9), so the kernels here are
// plain, portable Go loops rather than hand-vectorised assembly —
// register-blocked in the style of the teacher's accumulator-tile
// kernels, but correct for any ISA without per-architecture code.
package kernel

// Float is the element-type constraint for every kernel and table in
// this package.
type Float interface {
	~float32 | ~float64
}

// Mode selects which of the three kernel tables (spec §3, §4.4 step 1)
// applies to the current depth slice.
type Mode int

const (
	// ModeZero is used when alpha == 0: the destination is fully
	// overwritten by beta*(lhs*rhs), ignoring whatever D held before.
	ModeZero Mode = iota
	// ModeOne is used when alpha == 1: D += beta*(lhs*rhs).
	ModeOne
	// ModeGeneral is used for any other alpha: D = alpha*D + beta*(lhs*rhs).
	ModeGeneral
)

// Func is the micro-kernel contract from spec §6: computes
// dst[0:mTile, 0:nTile] under the given alpha mode over kChunk depth.
// lhs is always accessed with row stride 1 (packed panels and the
// skip-pack fallback both guarantee this; see pack.SkipLHS), column
// stride lhsCS. rhs is accessed with row stride rhsRS, column stride
// rhsCS, both possibly non-unit when packing was skipped.
type Func[T Float] func(
	mTile, nTile, kChunk int,
	dst []T, dstRS, dstCS int,
	lhs []T, lhsCS int,
	rhs []T, rhsRS, rhsCS int,
	alpha, beta T,
)

// Table is a read-only dispatch table for one (ISA, alpha-mode) pair,
// sized exactly MRDivN x NR and indexed at [ceil(mTile/N)-1][nTile-1]
// per spec §9 — flat slices rather than a 2-D array so Lookup can
// bounds-check once with a clear panic message.
type Table[T Float] struct {
	N       int
	MR      int
	NR      int
	MRDivN  int
	entries []Func[T]
}

// NewTable builds the MRDivN x NR table for the given kernel shape,
// with every slot bound to the single portable kernel function for
// the given mode. Spec §4.5 reserves one table per ISA per alpha-mode;
// since this module's micro-kernels are element-count-parameterised
// Go loops rather than fixed-size unrolled assembly, one function
// correctly serves every (mTile, nTile) slot in the table.
func NewTable[T Float](n, mr, nr int, mode Mode) Table[T] {
	if mr%n != 0 {
		panic("kernel: MR must be a multiple of N")
	}
	mrDivN := mr / n
	t := Table[T]{N: n, MR: mr, NR: nr, MRDivN: mrDivN, entries: make([]Func[T], mrDivN*nr)}
	fn := genericKernel[T](mode)
	for i := range t.entries {
		t.entries[i] = fn
	}
	return t
}

// Lookup returns the kernel for a tile of shape (mTile, nTile), per
// spec §4.4 step 5: table[ceil(mTile/N)-1][nTile-1].
func (t Table[T]) Lookup(mTile, nTile int) Func[T] {
	if mTile < 1 || mTile > t.MR {
		panic("kernel: m_tile out of range")
	}
	if nTile < 1 || nTile > t.NR {
		panic("kernel: n_tile out of range")
	}
	row := (mTile+t.N-1)/t.N - 1
	col := nTile - 1
	return t.entries[row*t.NR+col]
}

// genericKernel returns the single portable micro-kernel implementation
// for the given alpha mode, register-blocked over an (mTile, nTile)
// accumulator held as a flat local slice for the duration of the depth
// loop (the Go-loop analogue of the teacher's SIMD accumulator tile).
func genericKernel[T Float](mode Mode) Func[T] {
	return func(
		mTile, nTile, kChunk int,
		dst []T, dstRS, dstCS int,
		lhs []T, lhsCS int,
		rhs []T, rhsRS, rhsCS int,
		alpha, beta T,
	) {
		var acc [maxTile]T
		for i := 0; i < mTile*nTile; i++ {
			acc[i] = 0
		}

		for kk := 0; kk < kChunk; kk++ {
			lhsK := lhs[kk*lhsCS:]
			rhsK := rhs[kk*rhsRS:]
			for i := 0; i < mTile; i++ {
				lv := lhsK[i]
				for j := 0; j < nTile; j++ {
					acc[i*nTile+j] += lv * rhsK[j*rhsCS]
				}
			}
		}

		for i := 0; i < mTile; i++ {
			for j := 0; j < nTile; j++ {
				d := dst[i*dstRS+j*dstCS : i*dstRS+j*dstCS+1]
				switch mode {
				case ModeZero:
					d[0] = beta * acc[i*nTile+j]
				case ModeOne:
					d[0] = d[0] + beta*acc[i*nTile+j]
				default:
					d[0] = alpha*d[0] + beta*acc[i*nTile+j]
				}
			}
		}
	}
}

// maxTile bounds the stack-allocated accumulator. The largest tile any
// ISA shape in this module uses is MR=48 (3*16, AVX-512 float32) by
// NR=8, 384 elements, under this bound.
const maxTile = 64 * 8
