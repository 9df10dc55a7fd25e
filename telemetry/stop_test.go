// File: telemetry/stop_test.go
// Author: momentics <momentics@gmail.com>

package telemetry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStopSignal_SetOnce(t *testing.T) {
	s := NewStopSignal()
	assert.False(t, s.IsSet())

	var wg sync.WaitGroup
	fired := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fired <- s.Set()
		}()
	}
	wg.Wait()
	close(fired)

	n := 0
	for f := range fired {
		if f {
			n++
		}
	}
	assert.Equal(t, 1, n)
	assert.True(t, s.IsSet())
	<-s.Done()
}
