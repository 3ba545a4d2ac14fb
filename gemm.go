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

// Package gemm computes D ← α·D + β·(L·R) (or D ← β·(L·R) when the
// destination isn't read) for general strided matrices, dispatching to
// a cache-blocked, packed, multi-threaded driver for float32/float64
// and to a portable triple-loop fallback for any other numeric
// element type.
package gemm

import (
	"sync"

	"github.com/flatgemm/gemm/internal/driver"
	"github.com/flatgemm/gemm/internal/kernel"
	"github.com/flatgemm/gemm/internal/workqueue"
)

// Float is the element-type constraint for the blocked, packed GEMM
// path. Element is the broader constraint Gemm itself accepts; only
// float32 and float64 themselves reach the blocked path.
type Float interface {
	~float32 | ~float64
}

// Element is every numeric type Gemm accepts. Only float32 and float64
// get the blocked driver; everything else, including named types whose
// underlying type is float32 or float64, runs the naive fallback
// described in the calling contract.
type Element interface {
	~float32 | ~float64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Matrix is a strided view over a caller-owned slice: element (i, j)
// lives at Data[i*RowStride+j*ColStride]. Matrix does not own Data;
// its lifetime is bound by the caller, and RowStride/ColStride may be
// negative.
type Matrix[T Element] struct {
	Data      []T
	RowStride int
	ColStride int
}

var (
	poolOnce    sync.Once
	sharedPoolV *workqueue.Pool
)

func sharedPool() *workqueue.Pool {
	poolOnce.Do(func() {
		sharedPoolV = workqueue.New(0)
	})
	return sharedPoolV
}

// Gemm performs dst ← α·dst + β·(lhs·rhs) (or dst ← β·(lhs·rhs) when
// readDst is false), in place on dst.Data.
//
// Calling contract:
//   - dst, lhs, and rhs must not alias one another.
//   - nThreads must be >= 1; passing 1 forces serial execution.
//   - for T in Float (float32/float64), scratch must hold at least
//     WorkspaceSize[T](m, n, k, nThreads) bytes; scratch is ignored
//     for any other element type, which runs the naive fallback and
//     threads only over the outer m axis.
//   - m == 0 or n == 0 is not an error: Gemm returns without writing.
//
// All other preconditions (non-aliasing, sufficient scratch,
// non-negative extents) are the caller's responsibility; violating
// them is undefined behaviour, not a reported error, because this is
// a performance-critical low-level primitive (see ErrWorkspaceOverflow
// for the one exception). The element-type test below is the
// "generic wrapper routes by runtime type test" the calling contract
// describes: Gemm is generic over every supported numeric type, but
// only float32/float64 reach the blocked driver.
func Gemm[T Element](m, n, k int, dst, lhs, rhs Matrix[T], alpha, beta T, readDst bool, nThreads int, scratch []byte) {
	if m == 0 || n == 0 {
		return
	}
	if nThreads < 1 {
		panic("gemm: n_threads must be >= 1")
	}

	switch d := any(dst.Data).(type) {
	case []float32:
		gemmBlocked(m, n, k,
			Matrix[float32]{Data: d, RowStride: dst.RowStride, ColStride: dst.ColStride},
			Matrix[float32]{Data: any(lhs.Data).([]float32), RowStride: lhs.RowStride, ColStride: lhs.ColStride},
			Matrix[float32]{Data: any(rhs.Data).([]float32), RowStride: rhs.RowStride, ColStride: rhs.ColStride},
			any(alpha).(float32), any(beta).(float32), readDst, nThreads, scratch)
	case []float64:
		gemmBlocked(m, n, k,
			Matrix[float64]{Data: d, RowStride: dst.RowStride, ColStride: dst.ColStride},
			Matrix[float64]{Data: any(lhs.Data).([]float64), RowStride: lhs.RowStride, ColStride: lhs.ColStride},
			Matrix[float64]{Data: any(rhs.Data).([]float64), RowStride: rhs.RowStride, ColStride: rhs.ColStride},
			any(alpha).(float64), any(beta).(float64), readDst, nThreads, scratch)
	default:
		naiveGemm(m, n, k, dst, lhs, rhs, alpha, beta, readDst, nThreads)
	}
}

// gemmBlocked is the Float-constrained path: canonicalise via the
// driver, pick the ISA-appropriate kernel tables, and run the packed
// blocked multiply.
func gemmBlocked[T Float](m, n, k int, dst, lhs, rhs Matrix[T], alpha, beta T, readDst bool, nThreads int, scratch []byte) {
	shape := shapeFor[T]()
	tables := kernel.NewTables[T](shape.N, shape.MR, shape.NR)

	var pool *workqueue.Pool
	if nThreads > 1 {
		pool = sharedPool()
	}

	opt := driver.Options[T]{
		Alpha:    alpha,
		Beta:     beta,
		ReadDst:  readDst,
		NThreads: nThreads,
		Scratch:  scratch,
		Pool:     pool,
		Tables:   tables,
		Shape:    driver.Shape{N: shape.N, MR: shape.MR, NR: shape.NR},
	}

	driver.Gemm[T](m, n, k,
		driver.View[T]{Data: dst.Data, RS: dst.RowStride, CS: dst.ColStride},
		driver.View[T]{Data: lhs.Data, RS: lhs.RowStride, CS: lhs.ColStride},
		driver.View[T]{Data: rhs.Data, RS: rhs.RowStride, CS: rhs.ColStride},
		opt,
	)
}
