// File: internal/concurrency/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Worker pool for thermostress. Workers are independent OS processes or
// OS-thread-locked goroutines running a CPU-bound workload. The pool launches
// them, pins them through an api.AffinityController, reports liveness and
// joins them. It never terminates a worker.
package concurrency
