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

package scratch

import "unsafe"

// sizeOf returns sizeof(T) in bytes for the zero value passed in,
// letting Carve stay generic without importing reflect on the hot path.
func sizeOf[T any](zero T) int {
	return int(unsafe.Sizeof(zero))
}

// bytesToSlice reinterprets a []byte region, known to be large enough
// and cache-line aligned, as a []T of length n. The caller (Carve)
// guarantees the backing array outlives the returned slice, same as
// any other sub-slice of the arena's buffer.
func bytesToSlice[T any](region []byte, n int) []T {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&region[0])), n)
}
