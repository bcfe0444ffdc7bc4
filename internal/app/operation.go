package app

import "github.com/cristibaluta/Imagin-Raw-sub001/internal/library"

// Operation identifies one CLI invocation. Its ID stamps every log
// line the invocation writes, so interleaved runs can be told apart in
// a shared log file.
type Operation struct {
	Name string
	ID   string
}

// NewOperation creates an operation stamped with the clock's current
// UTC time.
func NewOperation(name string, clock library.Clock) Operation {
	return Operation{
		Name: name,
		ID:   clock.Now().UTC().Format("20060102T150405Z"),
	}
}
