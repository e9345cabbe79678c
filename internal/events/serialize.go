package events

import "time"

// SchemaCompiled is emitted after a schema is built.
type SchemaCompiled struct {
	Schema   string
	Fields   []string
	Duration time.Duration
}

// SerializeStart is emitted before a serializer instance computes its output.
// ID is unique per instance and pairs the start with its finish. Parent is the
// ID of the instance serializing the enclosing value, zero at the top level.
type SerializeStart struct {
	ID     uint64
	Parent uint64
	Schema string
	Many   bool
}

// SerializeFinish is emitted after a serializer instance computed its output.
// Items counts the serialized elements: 1 in single mode, the number of
// successfully serialized elements in batch mode.
type SerializeFinish struct {
	ID       uint64
	Schema   string
	Many     bool
	Items    int
	Err      error
	Duration time.Duration
}
