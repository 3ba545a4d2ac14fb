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

import "github.com/flatgemm/gemm/internal/scratch"

// ErrWorkspaceOverflow is returned by WorkspaceSize when the required
// byte count would overflow a machine word. It is the only error this
// package returns; every other precondition is the caller's
// responsibility and is not reported as an error (nThreads < 1 and an
// exhausted scratch region panic; other violations are undefined
// behaviour), matching spec §7's split between caller-bug
// preconditions and the one genuinely recoverable failure.
var ErrWorkspaceOverflow = scratch.ErrOverflow
