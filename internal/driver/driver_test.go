// Copyright 2026 The gemm Authors. SPDX-License-Identifier: Apache-2.0

package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flatgemm/gemm/internal/kernel"
	"github.com/flatgemm/gemm/internal/scratch"
	"github.com/flatgemm/gemm/internal/workqueue"
)

func tables64(n, mr, nr int) kernel.Tables[float64] {
	return kernel.NewTables[float64](n, mr, nr)
}

func rowMajor(m, n int) View[float64] {
	return View[float64]{Data: make([]float64, m*n), RS: n, CS: 1}
}

// S1: m=n=k=1, L=[2], R=[3], D=[5], alpha=4, beta=7, read_dst=true -> D=[41].
func TestScenarioS1(t *testing.T) {
	dst := View[float64]{Data: []float64{5}, RS: 1, CS: 1}
	lhs := View[float64]{Data: []float64{2}, RS: 1, CS: 1}
	rhs := View[float64]{Data: []float64{3}, RS: 1, CS: 1}

	opt := Options[float64]{
		Alpha: 4, Beta: 7, ReadDst: true, NThreads: 1,
		Tables: tables64(1, 2, 4),
		Shape:  Shape{N: 1, MR: 2, NR: 4},
	}
	Gemm(1, 1, 1, dst, lhs, rhs, opt)
	require.InDelta(t, 41.0, dst.Data[0], 1e-9)
}

// S2: 2x2 * 2x2, alpha=0, beta=1, read_dst=false -> [[19,22],[43,50]].
func TestScenarioS2(t *testing.T) {
	dst := rowMajor(2, 2)
	lhs := View[float64]{Data: []float64{1, 2, 3, 4}, RS: 2, CS: 1}
	rhs := View[float64]{Data: []float64{5, 6, 7, 8}, RS: 2, CS: 1}

	opt := Options[float64]{
		Alpha: 0, Beta: 1, ReadDst: false, NThreads: 1,
		Tables: tables64(1, 2, 4),
		Shape:  Shape{N: 1, MR: 2, NR: 4},
	}
	Gemm(2, 2, 2, dst, lhs, rhs, opt)
	require.InDelta(t, 19.0, dst.Data[0], 1e-9)
	require.InDelta(t, 22.0, dst.Data[1], 1e-9)
	require.InDelta(t, 43.0, dst.Data[2], 1e-9)
	require.InDelta(t, 50.0, dst.Data[3], 1e-9)
}

// S3: m=3, n=1, k=4, gemv path, cross-checked against a manual dot product.
func TestScenarioS3Gemv(t *testing.T) {
	lData := []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	}
	lhs := View[float64]{Data: lData, RS: 4, CS: 1}
	rhs := View[float64]{Data: []float64{1, 1, 1, 1}, RS: 1, CS: 1}
	dst := rowMajor(3, 1)

	opt := Options[float64]{
		Alpha: 0, Beta: 1, ReadDst: false, NThreads: 1,
		Tables: tables64(1, 2, 4),
		Shape:  Shape{N: 1, MR: 2, NR: 4},
	}
	Gemm(3, 1, 4, dst, lhs, rhs, opt)
	require.InDelta(t, 10.0, dst.Data[0], 1e-9)
	require.InDelta(t, 26.0, dst.Data[1], 1e-9)
	require.InDelta(t, 42.0, dst.Data[2], 1e-9)
}

// S4: larger random shape, n_threads=8 vs n_threads=1 must agree.
func TestScenarioS4ThreadIndependence(t *testing.T) {
	const m, n, k = 64, 64, 64
	lhsData := make([]float64, m*k)
	rhsData := make([]float64, k*n)
	seed := uint64(12345)
	next := func() float64 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float64(seed>>40) / float64(1<<24)
	}
	for i := range lhsData {
		lhsData[i] = next()
	}
	for i := range rhsData {
		rhsData[i] = next()
	}

	run := func(threads int, pool *workqueue.Pool) []float64 {
		dst := rowMajor(m, n)
		lhs := View[float64]{Data: append([]float64(nil), lhsData...), RS: k, CS: 1}
		rhs := View[float64]{Data: append([]float64(nil), rhsData...), RS: n, CS: 1}
		opt := Options[float64]{
			Alpha: 0, Beta: 1, ReadDst: false, NThreads: threads,
			Tables: tables64(1, 4, 4),
			Shape:  Shape{N: 1, MR: 4, NR: 4},
			Pool:   pool,
		}
		need, err := scratch.Size(m, n, k, 4, 4, 8, threads)
		require.NoError(t, err)
		opt.Scratch = make([]byte, need)
		Gemm(m, n, k, dst, lhs, rhs, opt)
		return dst.Data
	}

	serial := run(1, nil)
	pool := workqueue.New(8)
	defer pool.Close()
	parallel := run(8, pool)

	require.Len(t, parallel, len(serial))
	for i := range serial {
		require.InDelta(t, serial[i], parallel[i], 1e-9)
	}
}

// S5: dst_rs=-1 (reversed row order) must equal the forward-stride
// result after reversing the rows of D.
func TestScenarioS5NegativeRowStride(t *testing.T) {
	const m, n, k = 3, 2, 2
	lData := []float64{1, 2, 3, 4, 5, 6}
	rData := []float64{7, 8, 9, 10}

	fwdDst := rowMajor(m, n)
	fwdLhs := View[float64]{Data: append([]float64(nil), lData...), RS: k, CS: 1}
	fwdRhs := View[float64]{Data: append([]float64(nil), rData...), RS: n, CS: 1}
	opt := Options[float64]{
		Alpha: 0, Beta: 1, ReadDst: false, NThreads: 1,
		Tables: tables64(1, 2, 4),
		Shape:  Shape{N: 1, MR: 2, NR: 4},
	}
	Gemm(m, n, k, fwdDst, fwdLhs, fwdRhs, opt)

	// Reversed: base at the last row, rs = -n, which should produce the
	// mirror image of fwdDst once read back in forward row order.
	revData := make([]float64, m*n)
	revDst := View[float64]{Data: revData, Base: (m - 1) * n, RS: -n, CS: 1}
	revLhs := View[float64]{Data: append([]float64(nil), lData...), RS: k, CS: 1}
	revRhs := View[float64]{Data: append([]float64(nil), rData...), RS: n, CS: 1}
	Gemm(m, n, k, revDst, revLhs, revRhs, opt)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			want := fwdDst.Data[i*n+j]
			got := revData[(m-1-i)*n+j]
			require.InDeltaf(t, want, got, 1e-9, "row %d col %d", i, j)
		}
	}
}

// S6: k=0, read_dst=true, alpha=3 -> D <- 3*D_in.
func TestScenarioS6KZero(t *testing.T) {
	dst := View[float64]{Data: []float64{1, 2, 3, 4}, RS: 2, CS: 1}
	lhs := View[float64]{Data: nil, RS: 0, CS: 0}
	rhs := View[float64]{Data: nil, RS: 0, CS: 0}

	opt := Options[float64]{
		Alpha: 3, Beta: 1, ReadDst: true, NThreads: 1,
		Tables: tables64(1, 2, 4),
		Shape:  Shape{N: 1, MR: 2, NR: 4},
	}
	Gemm(2, 2, 0, dst, lhs, rhs, opt)
	require.Equal(t, []float64{3, 6, 9, 12}, dst.Data)
}

func TestHandleDegenerateKZeroNoReadDst(t *testing.T) {
	dst := View[float64]{Data: []float64{1, 2, 3, 4}, RS: 2, CS: 1}
	p := problem[float64]{m: 2, n: 2, k: 0, dst: dst}
	handled := handleDegenerate(p, false, 0, 0)
	require.True(t, handled)
	require.Equal(t, []float64{0, 0, 0, 0}, dst.Data)
}

func TestCanonicaliseNegativeDstRowStride(t *testing.T) {
	dst := View[float64]{Data: make([]float64, 6), Base: 4, RS: -2, CS: 1}
	lhs := View[float64]{Data: make([]float64, 6), Base: 4, RS: -2, CS: 1}
	rhs := View[float64]{Data: make([]float64, 4), RS: 2, CS: 1}

	p := canonicalise(3, 2, 2, dst, lhs, rhs)
	require.GreaterOrEqual(t, p.dst.RS, 0)
	require.GreaterOrEqual(t, p.dst.CS, 0)
}
