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

import (
	"unsafe"

	"github.com/flatgemm/gemm/internal/isa"
	"github.com/flatgemm/gemm/internal/scratch"
)

// WorkspaceSize returns the number of scratch bytes Gemm needs for a
// multiply of shape (m, n, k) run across up to maxThreads threads, or
// ErrWorkspaceOverflow if any intermediate size computation would
// overflow a machine word. The caller must allocate at least this many
// bytes and pass them as Gemm's scratch argument.
//
// The returned size already accounts for stride canonicalisation
// possibly transposing the problem before the driver sees it: it is
// the larger of the (m,n) and (n,m) orientations.
func WorkspaceSize[T Float](m, n, k, maxThreads int) (uint64, error) {
	shape := shapeFor[T]()
	var zero T
	return scratch.SizeBothOrientations(m, n, k, shape.MR, shape.NR, int(unsafe.Sizeof(zero)), maxThreads)
}

func shapeFor[T Float]() isa.Shape {
	var zero T
	switch any(zero).(type) {
	case float32:
		return isa.ShapeFloat32()
	case float64:
		return isa.ShapeFloat64()
	default:
		panic("gemm: unsupported element type")
	}
}
