package alert

import (
	"sync/atomic"
)

// ConfigHolder publishes the current thresholds. Readers take a snapshot per
// evaluation; Set swaps in a new validated value.
type ConfigHolder struct {
	current atomic.Pointer[Thresholds]
}

func NewConfigHolder(initial Thresholds) (*ConfigHolder, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	h := &ConfigHolder{}
	h.current.Store(&initial)
	return h, nil
}

// Get returns a copy of the current thresholds.
func (h *ConfigHolder) Get() Thresholds {
	return *h.current.Load()
}

// Set replaces the thresholds. Invalid values leave the current ones in place.
func (h *ConfigHolder) Set(t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	h.current.Store(&t)
	return nil
}
