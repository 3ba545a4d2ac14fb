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

package kernel

// Tables bundles the three alpha-mode tables (spec §3's "one table per
// α-mode") that share a single (N, MR, NR) shape.
type Tables[T Float] struct {
	Zero    Table[T]
	One     Table[T]
	General Table[T]
}

// NewTables builds all three alpha-mode tables for one kernel shape.
func NewTables[T Float](n, mr, nr int) Tables[T] {
	return Tables[T]{
		Zero:    NewTable[T](n, mr, nr, ModeZero),
		One:     NewTable[T](n, mr, nr, ModeOne),
		General: NewTable[T](n, mr, nr, ModeGeneral),
	}
}

// ForMode returns the table matching alpha, implementing the
// zero/one/general trichotomy of spec §4.4 step 1. Dispatch is exact
// equality, not a tolerance band: this selects a code path, not a
// numerical approximation.
func (t Tables[T]) ForMode(alpha T) Table[T] {
	switch {
	case alpha == 0:
		return t.Zero
	case alpha == 1:
		return t.One
	default:
		return t.General
	}
}
