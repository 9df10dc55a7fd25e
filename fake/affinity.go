// File: fake/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"sync"

	"github.com/momentics/thermostress/api"
)

// PinCall is one recorded Pin invocation.
type PinCall struct {
	ID    int
	Cores api.CoreSet
}

// Affinity records every Pin call and can be told to reject some of them.
type Affinity struct {
	mu      sync.Mutex
	calls   []PinCall
	current map[int]api.CoreSet
	// Reject, when set, decides per call whether the pin fails.
	Reject func(id int, cores api.CoreSet) bool
}

var _ api.AffinityController = (*Affinity)(nil)

// NewAffinity returns an accepting recorder.
func NewAffinity() *Affinity {
	return &Affinity{current: make(map[int]api.CoreSet)}
}

func (a *Affinity) Pin(id int, cores api.CoreSet) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, PinCall{ID: id, Cores: cores})
	if a.Reject != nil && a.Reject(id, cores) {
		return api.NewError(api.ErrCodeAffinityDenied, "rejected by fake").WithContext("id", id)
	}
	a.current[id] = cores
	return nil
}

func (a *Affinity) Get(id int) (api.CoreSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	cores, ok := a.current[id]
	if !ok {
		return nil, api.NewError(api.ErrCodeAffinityDenied, "unknown id").WithContext("id", id)
	}
	return cores, nil
}

// Calls returns every Pin call in order.
func (a *Affinity) Calls() []PinCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]PinCall(nil), a.calls...)
}

// Count returns the number of Pin calls.
func (a *Affinity) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.calls)
}
