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

package gemm

import "sync"

// naiveGemm is the triple-loop fallback the calling contract names for
// element types outside Float: no packing, no scratch, no ISA
// dispatch, threaded only over the outer m axis. It loops row i, then
// column j, then depth p, finishing each dot product before writing
// the destination element, without tiling.
func naiveGemm[T Element](m, n, k int, dst, lhs, rhs Matrix[T], alpha, beta T, readDst bool, nThreads int) {
	if nThreads <= 1 || m <= 1 {
		naiveRows(0, m, n, k, dst, lhs, rhs, alpha, beta, readDst)
		return
	}

	var wg sync.WaitGroup
	q, r := m/nThreads, m%nThreads
	start := 0
	for tid := 0; tid < nThreads; tid++ {
		rows := q
		if tid < r {
			rows++
		}
		if rows == 0 {
			continue
		}
		lo, hi := start, start+rows
		start = hi
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			naiveRows(lo, hi, n, k, dst, lhs, rhs, alpha, beta, readDst)
		}(lo, hi)
	}
	wg.Wait()
}

func naiveRows[T Element](rowLo, rowHi, n, k int, dst, lhs, rhs Matrix[T], alpha, beta T, readDst bool) {
	for i := rowLo; i < rowHi; i++ {
		for j := 0; j < n; j++ {
			var acc T
			for p := 0; p < k; p++ {
				acc += lhs.Data[i*lhs.RowStride+p*lhs.ColStride] * rhs.Data[p*rhs.RowStride+j*rhs.ColStride]
			}
			idx := i*dst.RowStride + j*dst.ColStride
			if readDst {
				dst.Data[idx] = alpha*dst.Data[idx] + beta*acc
			} else {
				dst.Data[idx] = beta * acc
			}
		}
	}
}
