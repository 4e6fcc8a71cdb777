package steps

import (
	"time"
)

const (
	testTimestamp = "2024-03-01T12:27:04.783936865Z"
	testRequestID = "15f8e618-81f6-b1c9-eae9-e9496b05419a"
)

// generator returns constant request IDs and times so log output is
// consistent between runs
type generator struct{}

// RequestID returns a constant request ID
func (g *generator) RequestID() (string, error) {
	return testRequestID, nil
}

// Timestamp generates a constant timestamp
func (g *generator) Timestamp() time.Time {
	t, _ := time.Parse(time.RFC3339, testTimestamp)
	return t
}
