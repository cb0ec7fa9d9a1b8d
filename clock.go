package ocm

import "sync/atomic"

// orderClock issues monotonic creation-order numbers for parameters.
//
// Schema field order must follow parameter declaration order, not Go's map
// iteration or any host-language attribute enumeration. Every parameter is
// stamped with a number from this clock at construction; schemas sort their
// fields by it.
//
// Thread-safety: safe for concurrent use (atomic operations). Calls are
// linearizable - each call returns a unique, strictly increasing value.
type orderClock struct {
	seq atomic.Uint64
}

// Next returns the next order number and increments the clock.
func (c *orderClock) Next() uint64 {
	return c.seq.Add(1)
}

// Current returns the current order number without incrementing.
func (c *orderClock) Current() uint64 {
	return c.seq.Load()
}

// creationOrder is the process-wide clock stamping every parameter.
// It starts at zero and is only ever incremented, never reset.
var creationOrder orderClock
