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

//go:build amd64

package isa

import "golang.org/x/sys/cpu"

func init() {
	if noSimdEnv() {
		currentLevel = Scalar
		return
	}
	currentLevel = detect()
}

// detect probes in the fixed priority spec §4.5 names: AVX-512F, FMA,
// AVX, SSE, scalar.
func detect() Level {
	switch {
	case cpu.X86.HasAVX512F:
		return AVX512F
	case cpu.X86.HasAVX && cpu.X86.HasFMA:
		return FMA
	case cpu.X86.HasAVX:
		return AVX
	case cpu.X86.HasSSE2:
		return SSE
	default:
		return Scalar
	}
}
