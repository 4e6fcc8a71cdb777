package handler

import (
	"context"
	"time"

	"github.com/ONSdigital/dp-table-aggregator/engine"
)

//go:generate moq -out mock/discoverer.go -pkg mock . Discoverer
//go:generate moq -out mock/dispatcher.go -pkg mock . Dispatcher
//go:generate moq -out mock/generator.go -pkg mock . Generator

// Discoverer lists the tables held in each dataset
type Discoverer interface {
	Discover(ctx context.Context, datasets []string) engine.Discovery
}

// Dispatcher runs fetch units and reports one result per unit
type Dispatcher interface {
	Dispatch(ctx context.Context, units []engine.Unit, concurrency int) <-chan engine.Result
}

// Generator contains methods for dynamically required strings and times
// e.g. request IDs.
type Generator interface {
	RequestID() (string, error)
	Timestamp() time.Time
}
