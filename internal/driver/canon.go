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

// problem bundles the normalised operands the blocked driver and the
// degenerate-shape handlers both work from.
type problem[T kernel.Float] struct {
	m, n, k int
	dst     View[T]
	lhs     View[T]
	rhs     View[T]
}

// canonicalise applies spec §4.1's pre-normalisation steps 2-5 in
// order, returning the normalised problem. Step 1 (m==0 || n==0) is
// the caller's responsibility since it short-circuits before any
// scratch sizing or view construction is needed.
func canonicalise[T kernel.Float](m, n, k int, dst, lhs, rhs View[T]) problem[T] {
	p := problem[T]{m: m, n: n, k: k, dst: dst, lhs: lhs, rhs: rhs}

	// Step 2: dst_rs < 0 -> advance D's base, negate dst_rs, mirror on L's rs.
	if p.dst.RS < 0 {
		p.dst.Base += (p.m - 1) * p.dst.RS
		p.dst.RS = -p.dst.RS
		p.lhs.Base += (p.m - 1) * p.lhs.RS
		p.lhs.RS = -p.lhs.RS
	}

	// Step 3: dst_cs < 0 -> advance D's base, negate dst_cs, mirror on R's cs.
	if p.dst.CS < 0 {
		p.dst.Base += (p.n - 1) * p.dst.CS
		p.dst.CS = -p.dst.CS
		p.rhs.Base += (p.n - 1) * p.rhs.CS
		p.rhs.CS = -p.rhs.CS
	}

	// Step 4: dst_cs < dst_rs -> transpose for a tall output.
	if p.dst.CS < p.dst.RS {
		p = p.transpose()
	}

	// Step 5: m<=4 and |rhs_cs| <= |rhs_rs| -> gevm->gemv canonicalisation.
	// Applied after step 4, against whatever is now "R" (SPEC_FULL.md
	// "Supplemented features": the original transposes first, then
	// re-checks the resulting shape for this second condition).
	if p.m <= 4 && absInt(p.rhs.CS) <= absInt(p.rhs.RS) {
		p = p.transpose()
	}

	return p
}

// transpose swaps (m,n), (dst_rs,dst_cs), and the roles and strides of
// L and R (spec §4.1 step 4): the new L is the old R with its own
// (row,col) strides swapped, and vice versa, since D = L*R transposed
// is D^T = R^T * L^T.
func (p problem[T]) transpose() problem[T] {
	newDst := View[T]{Data: p.dst.Data, Base: p.dst.Base, RS: p.dst.CS, CS: p.dst.RS}
	newLhs := View[T]{Data: p.rhs.Data, Base: p.rhs.Base, RS: p.rhs.CS, CS: p.rhs.RS}
	newRhs := View[T]{Data: p.lhs.Data, Base: p.lhs.Base, RS: p.lhs.CS, CS: p.lhs.RS}
	return problem[T]{m: p.n, n: p.m, k: p.k, dst: newDst, lhs: newLhs, rhs: newRhs}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
