package tinyjs

import (
	metro "github.com/dgryski/go-metro"
)

// Stats is a snapshot of an engine's resource usage.
type Stats struct {
	Capacity     uint32 // arena bytes
	Used         uint32 // bytes taken by entities
	LowWatermark uint32 // minimum free bytes observed
	MaxDepth     int    // deepest evaluator nesting observed
	Digest       uint64 // hash of the live arena contents
}

// Stats returns the current resource usage.
func (e *Engine) Stats() Stats {
	e.watermark()
	return Stats{
		Capacity:     e.mem.top,
		Used:         e.mem.brk,
		LowWatermark: e.mem.lwm,
		MaxDepth:     e.maxSeen,
		Digest:       metro.Hash64(e.mem.buf[:e.mem.brk], 0),
	}
}
