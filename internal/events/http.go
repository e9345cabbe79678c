package events

import (
	"net/http"
	"time"
)

// HTTPStart is emitted when a projection request is received. Schema is the
// requested schema name, empty when the path names none.
type HTTPStart struct {
	Request *http.Request
	Schema  string
}

// HTTPFinish is emitted after the projection handler wrote its response.
type HTTPFinish struct {
	Request  *http.Request
	Schema   string
	Status   int
	Duration time.Duration
}
