package config

import (
	"github.com/M1cha/periscope-viewer/pkg/errors"
	"github.com/M1cha/periscope-viewer/pkg/state"
)

// Select returns the layout for a controller slot by evaluating the
// bindings in declared order and returning the first match. Validation
// guarantees a default binding, so Select is total; it is re-run every
// frame because controller identity can change between frames.
func (c *Config) Select(slot int, view *state.View) *Layout {
	for i := range c.Bindings {
		b := &c.Bindings[i]
		if b.Slot >= 0 && b.Slot != slot {
			continue
		}
		if b.When != nil && !b.When.Eval(view) {
			continue
		}
		return &c.Layouts[b.Layout]
	}
	errors.Invariantf("config.Select", "no binding matched slot %d", slot)
	return nil
}
