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

// Command gemminfo prints the runtime's detected SIMD dispatch level
// and the micro-kernel shapes that go with it, for diagnosing why a
// host is (or isn't) hitting the fast path.
package main

import (
	"fmt"
	"runtime"

	"github.com/flatgemm/gemm/internal/isa"
)

func main() {
	fmt.Printf("GOOS/GOARCH:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("NumCPU:       %d\n", runtime.NumCPU())
	fmt.Printf("GOMAXPROCS:   %d\n", runtime.GOMAXPROCS(0))
	fmt.Printf("dispatch:     %s\n", isa.CurrentLevel())

	f32 := isa.ShapeFloat32()
	f64 := isa.ShapeFloat64()
	fmt.Printf("float32 tile: N=%d MR=%d NR=%d\n", f32.N, f32.MR, f32.NR)
	fmt.Printf("float64 tile: N=%d MR=%d NR=%d\n", f64.N, f64.MR, f64.NR)
}
