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

// Package isa detects the CPU's SIMD capability once per process and
// exposes the (N, MR, NR) micro-kernel shape that goes with it.
package isa

import "os"

// Level names the instruction-set family a kernel table targets.
type Level int

const (
	// Scalar is the always-available, no-SIMD-assumed fallback.
	Scalar Level = iota
	// SSE is the 128-bit baseline x86-64 vector level.
	SSE
	// AVX is the 256-bit x86 vector level without fused multiply-add.
	AVX
	// FMA is AVX plus fused multiply-add (Haswell and later).
	FMA
	// AVX512F is the 512-bit AVX-512 Foundation level.
	AVX512F
	// NEON is the 128-bit ARM baseline vector level.
	NEON
)

func (l Level) String() string {
	switch l {
	case Scalar:
		return "scalar"
	case SSE:
		return "sse"
	case AVX:
		return "avx"
	case FMA:
		return "fma"
	case AVX512F:
		return "avx512f"
	case NEON:
		return "neon"
	default:
		return "unknown"
	}
}

// Shape is the per-ISA micro-kernel tuple from spec §4.5: N is the SIMD
// lane count in elements for the element type, MR a multiple of N, and
// NR small (4 or 8).
type Shape struct {
	N  int
	MR int
	NR int
}

// currentLevel is detected once in an arch-specific init() (see
// isa_amd64.go, isa_arm64.go, isa_other.go) and never changes afterward.
var currentLevel Level

// CurrentLevel returns the SIMD level chosen for this process.
func CurrentLevel() Level {
	return currentLevel
}

// noSimdEnv reports whether GEMM_NO_SIMD forces scalar dispatch,
// regardless of detected CPU features. Useful for testing and for
// working around unreliable feature detection on a given host.
func noSimdEnv() bool {
	v := os.Getenv("GEMM_NO_SIMD")
	return v != "" && v != "0" && v != "false"
}

// ShapeFloat32 returns the (N, MR, NR) tuple for float32 at the current
// dispatch level, per spec §4.5's table.
func ShapeFloat32() Shape {
	switch currentLevel {
	case AVX512F:
		return Shape{N: 16, MR: 3 * 16, NR: 8}
	case FMA:
		return Shape{N: 8, MR: 3 * 8, NR: 4}
	case AVX:
		return Shape{N: 8, MR: 2 * 8, NR: 4}
	case SSE:
		return Shape{N: 4, MR: 2 * 4, NR: 4}
	case NEON:
		return Shape{N: 4, MR: 2 * 4, NR: 4}
	default:
		return Shape{N: 1, MR: 2, NR: 4}
	}
}

// ShapeFloat64 returns the (N, MR, NR) tuple for float64 at the current
// dispatch level, per spec §4.5's table.
func ShapeFloat64() Shape {
	switch currentLevel {
	case AVX512F:
		return Shape{N: 8, MR: 3 * 8, NR: 8}
	case FMA:
		return Shape{N: 4, MR: 3 * 4, NR: 4}
	case AVX:
		return Shape{N: 4, MR: 2 * 4, NR: 4}
	case SSE:
		return Shape{N: 2, MR: 2 * 2, NR: 4}
	case NEON:
		return Shape{N: 2, MR: 2 * 2, NR: 4}
	default:
		return Shape{N: 1, MR: 2, NR: 4}
	}
}
