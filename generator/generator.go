package generator

import (
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/pkg/errors"
)

// Generator is responsible for generating the request IDs and times that
// might need to be mocked out to produce consistent output for tests
type Generator struct{}

// New returns a new Generator
func New() *Generator {
	return &Generator{}
}

// RequestID returns a new random UUID used to correlate the log lines of a
// single request
func (g *Generator) RequestID() (string, error) {
	id, err := uuid.GenerateUUID()
	if err != nil {
		return "", errors.Wrap(err, "failed to generate a request id")
	}
	return id, nil
}

// Timestamp generates a timestamp of the current time
func (g *Generator) Timestamp() time.Time {
	return time.Now()
}
