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

import "github.com/flatgemm/gemm/internal/kernel"

// handleDegenerate implements spec §4.1's degenerate-shape fast paths
// (k==0, k==1, and the n<=4 GEMV branch), run without packing or
// threading. It returns true if it fully handled the problem.
func handleDegenerate[T kernel.Float](p problem[T], readDst bool, alpha, beta T) bool {
	switch {
	case p.k == 0:
		zeroOrScaleDst(p, readDst, alpha)
		return true
	case p.k == 1:
		rank1Update(p, readDst, alpha, beta)
		return true
	case p.n <= 4 && absInt(p.lhs.RS) <= absInt(p.lhs.CS):
		gemvPath(p, readDst, alpha, beta)
		return true
	default:
		return false
	}
}

// zeroOrScaleDst implements spec §4.1's k==0 case: D <- alpha*D if
// read_dst, else D <- 0.
func zeroOrScaleDst[T kernel.Float](p problem[T], readDst bool, alpha T) {
	for i := 0; i < p.m; i++ {
		for j := 0; j < p.n; j++ {
			if readDst {
				p.dst.set(i, j, alpha*p.dst.at(i, j))
			} else {
				p.dst.set(i, j, 0)
			}
		}
	}
}

// rank1Update implements spec §4.1's k==1 case as a specialised
// rank-1 update, with the three sub-cases SPEC_FULL.md's
// "Supplemented features" section calls out by name.
func rank1Update[T kernel.Float](p problem[T], readDst bool, alpha, beta T) {
	switch {
	case !readDst:
		// D <- beta*(L*R), a pure outer product.
		for i := 0; i < p.m; i++ {
			li := p.lhs.at(i, 0)
			for j := 0; j < p.n; j++ {
				p.dst.set(i, j, beta*li*p.rhs.at(0, j))
			}
		}
	case alpha == 1:
		// D += beta*(L*R).
		for i := 0; i < p.m; i++ {
			li := p.lhs.at(i, 0)
			for j := 0; j < p.n; j++ {
				p.dst.set(i, j, p.dst.at(i, j)+beta*li*p.rhs.at(0, j))
			}
		}
	default:
		// D <- alpha*D + beta*(L*R), fused in one pass over D.
		for i := 0; i < p.m; i++ {
			li := p.lhs.at(i, 0)
			for j := 0; j < p.n; j++ {
				p.dst.set(i, j, alpha*p.dst.at(i, j)+beta*li*p.rhs.at(0, j))
			}
		}
	}
}

// gemvPath implements spec §4.1's n<=4 branch: zero or alpha-scale D,
// then accumulate a handful of GEMV-shaped dot-products with depth as
// the outer loop.
func gemvPath[T kernel.Float](p problem[T], readDst bool, alpha, beta T) {
	zeroOrScaleDst(p, readDst, alpha)

	for kk := 0; kk < p.k; kk++ {
		for i := 0; i < p.m; i++ {
			lik := p.lhs.at(i, kk)
			for j := 0; j < p.n; j++ {
				p.dst.set(i, j, p.dst.at(i, j)+beta*lik*p.rhs.at(kk, j))
			}
		}
	}
}
