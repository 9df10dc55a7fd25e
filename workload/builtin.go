// File: workload/builtin.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package workload

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/momentics/thermostress/api"
)

// sink keeps kernel results observable so the loops stay live work.
var sink float64

func init() {
	Register("matmul", MatMul)
	Register("primes", Primes)
	Register("spin", Spin)
}

// MatMul multiplies two random size x size matrices.
func MatMul(ctx context.Context, size int) error {
	if size <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "matrix size must be positive").WithContext("size", size)
	}
	r := rand.New(rand.NewPCG(uint64(size), 0x7e57))
	a := make([]float64, size*size)
	b := make([]float64, size*size)
	c := make([]float64, size*size)
	for i := range a {
		a[i] = r.Float64()
		b[i] = r.Float64()
	}
	for i := 0; i < size; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		row := a[i*size : (i+1)*size]
		out := c[i*size : (i+1)*size]
		for k, aik := range row {
			col := b[k*size : (k+1)*size]
			for j := range out {
				out[j] += aik * col[j]
			}
		}
	}
	sink = c[len(c)-1]
	return nil
}

// Primes counts primes below size*1000 by trial division.
func Primes(ctx context.Context, size int) error {
	if size <= 0 {
		return api.NewError(api.ErrCodeInvalidArgument, "prime bound must be positive").WithContext("size", size)
	}
	limit := size * 1000
	count := 0
	for n := 2; n < limit; n++ {
		if n%4096 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		prime := true
		for d := 2; d*d <= n; d++ {
			if n%d == 0 {
				prime = false
				break
			}
		}
		if prime {
			count++
		}
	}
	sink = float64(count)
	return nil
}

// Spin busy-loops for size milliseconds.
func Spin(ctx context.Context, size int) error {
	deadline := time.Now().Add(time.Duration(size) * time.Millisecond)
	x := 1.0
	for time.Now().Before(deadline) {
		for i := 0; i < 1000; i++ {
			x = x*1.0000001 + 1e-9
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	sink = x
	return nil
}
