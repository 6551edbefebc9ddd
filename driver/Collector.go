package driver

import "sfneuman.com/gorollout/trajectory"

// Collector is a Listener that accumulates every observed step into a
// trajectory, in observation order. It is the bridge between a Run
// call and trajectory-level consumers such as stacking and tensor
// export.
type Collector struct {
	steps trajectory.Trajectory
}

// NewCollector creates an empty Collector
func NewCollector() *Collector {
	return &Collector{}
}

// Listen implements the Listener interface
func (c *Collector) Listen(step trajectory.Step) {
	c.steps = append(c.steps, step)
}

// Trajectory returns the steps collected so far
func (c *Collector) Trajectory() trajectory.Trajectory {
	return c.steps
}

// Reset discards the collected steps
func (c *Collector) Reset() {
	c.steps = nil
}
