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

// Package driver is the blocked multi-level GEMM driver: stride
// canonicalisation, the degenerate-shape fast paths, and the
// col/depth/row-blocked, packed, multi-threaded general path.
package driver

import "github.com/flatgemm/gemm/internal/kernel"

// View is a strided matrix window into a caller-owned backing array.
// Base is the element index of the view's logical [0,0] entry; RS/CS
// may be negative before canonicalisation and are always non-negative
// on dst afterward (spec §4.1).
type View[T kernel.Float] struct {
	Data []T
	Base int
	RS   int
	CS   int
}

func (v View[T]) at(i, j int) T {
	return v.Data[v.Base+i*v.RS+j*v.CS]
}

func (v View[T]) set(i, j int, val T) {
	v.Data[v.Base+i*v.RS+j*v.CS] = val
}

// sub returns a view of the same backing array shifted so its [0,0]
// is the original view's [i,j].
func (v View[T]) sub(i, j int) View[T] {
	return View[T]{Data: v.Data, Base: v.Base + i*v.RS + j*v.CS, RS: v.RS, CS: v.CS}
}

// slice returns a raw sub-slice starting at [i,j], for handing to the
// packer or an unpacked kernel call that wants a []T plus strides.
func (v View[T]) slice(i, j int) []T {
	return v.Data[v.Base+i*v.RS+j*v.CS:]
}
