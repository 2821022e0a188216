package tinyjs

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'tinyjs'.
func tracer() tracing.Trace {
	return tracing.Select("tinyjs")
}

func (e *Engine) tr() tracing.Trace {
	if e.trace != nil {
		return e.trace
	}
	return tracer()
}
