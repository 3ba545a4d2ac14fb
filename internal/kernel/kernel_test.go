// Copyright 2026 The gemm Authors. SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTableLookupIndexing(t *testing.T) {
	const n, mr, nr = 4, 8, 4
	tbl := NewTable[float32](n, mr, nr, ModeOne)

	require.Panics(t, func() { tbl.Lookup(0, 1) })
	require.Panics(t, func() { tbl.Lookup(mr+1, 1) })
	require.Panics(t, func() { tbl.Lookup(1, 0) })
	require.Panics(t, func() { tbl.Lookup(1, nr+1) })

	require.NotPanics(t, func() { tbl.Lookup(mr, nr) })
	require.NotPanics(t, func() { tbl.Lookup(1, 1) })
}

func TestGenericKernelModeZero(t *testing.T) {
	tbl := NewTable[float64](1, 2, 2, ModeZero)
	fn := tbl.Lookup(2, 2)

	lhs := []float64{1, 3, 2, 4} // k=0 column: [1,3]; k=1 column: [2,4]; row stride 1, lhsCS=2
	rhs := []float64{5, 6, 7, 8} // k=0 row: [5,6]; k=1 row: [7,8]; rhsRS=2, rhsCS=1
	dst := []float64{100, 100, 100, 100}

	fn(2, 2, 2, dst, 2, 1, lhs, 2, rhs, 2, 1, 0, 1)

	// Reference: D = L*R with L=[[1,2],[3,4]], R=[[5,6],[7,8]]
	want := []float64{19, 22, 43, 50}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], w)
		}
	}
}

func TestGenericKernelModeOneAccumulates(t *testing.T) {
	tbl := NewTable[float64](1, 1, 1, ModeOne)
	fn := tbl.Lookup(1, 1)

	lhs := []float64{2}
	rhs := []float64{3}
	dst := []float64{5}

	fn(1, 1, 1, dst, 1, 1, lhs, 1, rhs, 1, 1, 1 /* unused in ModeOne */, 7)

	if dst[0] != 5+7*2*3 {
		t.Errorf("dst[0] = %v, want %v", dst[0], 5+7*2*3)
	}
}

func TestTablesForModeSelection(t *testing.T) {
	tabs := NewTables[float32](4, 8, 4)
	if _, ok := any(tabs.ForMode(0)).(Table[float32]); !ok {
		t.Fatal("ForMode(0) did not return a Table[float32]")
	}
}
