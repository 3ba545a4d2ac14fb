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

package driver

import (
	"unsafe"

	"github.com/flatgemm/gemm/internal/blockparams"
	"github.com/flatgemm/gemm/internal/kernel"
	"github.com/flatgemm/gemm/internal/pack"
	"github.com/flatgemm/gemm/internal/scratch"
	"github.com/flatgemm/gemm/internal/workqueue"
)

// singleThreadFloor is the m*n_chunk*k_chunk product (spec §4.4)
// at or below which the driver ignores the caller's thread count and runs
// serially: the parallel dispatch overhead would dominate the work.
const singleThreadFloor = 48 * 48 * 256

// Shape is the (N, MR, NR) micro-kernel tuple the ISA dispatcher chose
// (spec §4.5), passed through to the driver so it never has to probe
// CPU features itself.
type Shape struct {
	N, MR, NR int
}

// Options bundles everything the blocked driver needs beyond the
// three operand views: the scaling factors, the thread pool and
// requested thread count, the caller's scratch region, and the
// per-(ISA,type) kernel tables and shape the ISA dispatcher chose.
type Options[T kernel.Float] struct {
	Alpha, Beta T
	ReadDst     bool
	NThreads    int
	Scratch     []byte
	Pool        *workqueue.Pool
	Tables      kernel.Tables[T]
	Shape       Shape
}

// Gemm is the blocked driver's entry point: canonicalise, dispatch to
// a degenerate-shape fast path if one applies, otherwise run the
// packed, blocked, multi-threaded general path (spec §4.1, §4.4).
// m==0 || n==0 (spec §4.1 step 1) must already have been handled by
// the caller; Gemm assumes m>0 and n>0.
func Gemm[T kernel.Float](m, n, k int, dst, lhs, rhs View[T], opt Options[T]) {
	p := canonicalise(m, n, k, dst, lhs, rhs)

	if handleDegenerate(p, opt.ReadDst, opt.Alpha, opt.Beta) {
		return
	}

	mr, nr := opt.Shape.MR, opt.Shape.NR
	params := blockparams.Oracle(p.m, p.n, p.k, mr, nr, int(unsafe.Sizeof(p.dst.Data[0])))

	nThreads := opt.NThreads
	if nThreads < 1 {
		nThreads = 1
	}
	if p.m*params.Nc*params.Kc <= singleThreadFloor {
		nThreads = 1
	}

	arena := scratch.NewArena(opt.Scratch)
	runBlocked(p, opt, params, nThreads, arena)
}

// rowBand is one mc-wide row band of the row_outer loop.
type rowBand struct {
	start, extent int
}

func buildRowBands(m, mc int) []rowBand {
	var bands []rowBand
	for ic := 0; ic < m; ic += mc {
		bands = append(bands, rowBand{start: ic, extent: min(mc, m-ic)})
	}
	return bands
}

// runBlocked is the triple-nested col_outer/depth_outer/row_outer
// driver of spec §4.4, with R packed once per (col,depth) pair into a
// shared buffer and each thread packing its own L panel into a
// private buffer.
func runBlocked[T kernel.Float](p problem[T], opt Options[T], params blockparams.Params, nThreads int, arena *scratch.Arena) {
	mr, nr := opt.Shape.MR, opt.Shape.NR
	mc, nc, kc := params.Mc, params.Nc, params.Kc

	rBlocks := (nc + nr - 1) / nr
	sharedR := scratch.Carve[T](arena, rBlocks*pack.BlockStride(kc, nr))

	lBlocksPerThread := (mc + mr - 1) / mr
	lBufSize := lBlocksPerThread * pack.BlockStride(kc, mr)
	privateL := make([][]T, nThreads)
	for t := range privateL {
		privateL[t] = scratch.Carve[T](arena, lBufSize)
	}

	skipRPack := pack.SkipRHS(p.m, mr, p.rhs.RS)
	rowBands := buildRowBands(p.m, mc)

	for jc := 0; jc < p.n; jc += nc {
		nChunk := min(nc, p.n-jc)

		alpha := opt.Alpha
		for pc := 0; pc < p.k; pc += kc {
			kChunk := min(kc, p.k-pc)

			mode := kernel.ModeGeneral
			switch {
			case alpha == 0:
				mode = kernel.ModeZero
			case alpha == 1:
				mode = kernel.ModeOne
			}
			table := tableForMode(opt.Tables, mode)

			var rSrc []T
			rRS, rCS := nr, 1
			if skipRPack {
				rSrc = p.rhs.slice(pc, jc)
				rRS, rCS = p.rhs.RS, p.rhs.CS
			} else {
				base := p.rhs.Base + pc*p.rhs.RS + jc*p.rhs.CS
				pack.RHS(p.rhs.Data, base, p.rhs.RS, p.rhs.CS, kChunk, nChunk, sharedR, nr)
				rSrc = sharedR
			}

			// spec §4.4's second single-thread-suppression check: the
			// first (blocked.go:72-74, Gemm) compares against the whole
			// problem's params.Nc/params.Kc once; this one recomputes
			// against the actual per-chunk nChunk/kChunk, since a
			// trailing boundary chunk can be much smaller than the
			// steady-state block and not worth parallel dispatch.
			chunkThreads := nThreads
			if p.m*nChunk*kChunk <= singleThreadFloor {
				chunkThreads = 1
			}

			runDepthSlice(p, opt, table, rowBands, nChunk, kChunk, jc, pc, mr, nr,
				rSrc, rRS, rCS, skipRPack, chunkThreads, privateL, alpha, opt.Beta, arena)

			alpha = 1 // spec §4.4 step 1: alpha applies only to the first depth slice.
		}
	}
}

func tableForMode[T kernel.Float](t kernel.Tables[T], mode kernel.Mode) kernel.Table[T] {
	switch mode {
	case kernel.ModeZero:
		return t.Zero
	case kernel.ModeOne:
		return t.One
	default:
		return t.General
	}
}

// runDepthSlice implements §4.4 steps 3-5 for one (col_outer,
// depth_outer) pair: flattens the row bands' tiles into a linear job
// list, partitions it across nThreads via the exact q/r split, and
// has each thread scan row bands in order, packing its private L
// panel (if needed) and executing the MR×NR tiles in its assigned
// range.
func runDepthSlice[T kernel.Float](
	p problem[T], opt Options[T], table kernel.Table[T],
	rowBands []rowBand, nChunk, kChunk, jc, pc, mr, nr int,
	rSrc []T, rRS, rCS int, rPacked bool,
	nThreads int,
	privateL [][]T,
	alpha, beta T,
	arena *scratch.Arena,
) {
	nColMini := (nChunk + nr - 1) / nr

	bandJobs := make([]int, len(rowBands))
	bandStart := make([]int, len(rowBands))
	totalJobs := 0
	for i, band := range rowBands {
		nRowMini := (band.extent + mr - 1) / mr
		bandStart[i] = totalJobs
		bandJobs[i] = nColMini * nRowMini
		totalJobs += bandJobs[i]
	}

	work := func(tid, jobStart, jobEnd int) {
		for bi, band := range rowBands {
			lo := max(jobStart, bandStart[bi])
			hi := min(jobEnd, bandStart[bi]+bandJobs[bi])
			if lo >= hi {
				continue
			}

			lPacked := !pack.SkipLHS(band.extent, mr, p.lhs.RS, p.n)
			var lSrc []T
			lRS, lCS := p.lhs.RS, p.lhs.CS
			if lPacked {
				base := p.lhs.Base + band.start*p.lhs.RS + pc*p.lhs.CS
				pack.LHS(p.lhs.Data, base, p.lhs.RS, p.lhs.CS, band.extent, kChunk, privateL[tid], mr)
				lSrc = privateL[tid]
				lRS, lCS = 1, mr
			} else {
				lSrc = p.lhs.slice(band.start, pc)
			}

			for linear := lo; linear < hi; linear++ {
				local := linear - bandStart[bi]
				rowMiniIdx := local / nColMini
				colMiniIdx := local % nColMini

				iOff := rowMiniIdx * mr
				mTile := min(mr, band.extent-iOff)
				jOff := colMiniIdx * nr
				nTile := min(nr, nChunk-jOff)

				fn := table.Lookup(mTile, nTile)

				var lTile []T
				if lPacked {
					lTile = lSrc[rowMiniIdx*pack.BlockStride(kChunk, mr):]
				} else {
					lTile = lSrc[iOff*lRS:]
				}

				var rTile []T
				thisRRS, thisRCS := rRS, rCS
				if rPacked {
					rTile = rSrc[colMiniIdx*pack.BlockStride(kChunk, nr):]
				} else {
					rTile = rSrc[jOff*rCS:]
				}

				dstTile := p.dst.slice(band.start+iOff, jc+jOff)
				fn(mTile, nTile, kChunk, dstTile, p.dst.RS, p.dst.CS, lTile, lCS, rTile, thisRRS, thisRCS, alpha, beta)
			}
		}
	}

	if nThreads <= 1 || opt.Pool == nil {
		work(0, 0, totalJobs)
		return
	}

	ranges := workqueue.Partition(totalJobs, nThreads)
	opt.Pool.ParallelForN(len(ranges), nThreads, func(start, end int) {
		for tid := start; tid < end; tid++ {
			r := ranges[tid]
			if r.End > r.Start {
				work(tid, r.Start, r.End)
			}
		}
	})
}
