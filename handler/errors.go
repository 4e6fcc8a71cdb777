package handler

import (
	"errors"
	"net/http"

	"github.com/ONSdigital/dp-table-aggregator/engine"
	"github.com/ONSdigital/log.go/v2/log"
)

// envelopeError is an error reported to the caller as an error envelope
type envelopeError interface {
	error
	Envelope() engine.Envelope
}

type dataLogger interface {
	LogData() log.Data
}

type coder interface {
	Code() int
}

// statusCode returns the HTTP status carried by err, or 500 when it has none
func statusCode(err error) int {
	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return http.StatusInternalServerError
}

// unwrapLogData merges the log data of every error in err's chain, outermost
// values taking precedence
func unwrapLogData(err error) log.Data {
	data := log.Data{}
	for err != nil {
		if dl, ok := err.(dataLogger); ok {
			for k, v := range dl.LogData() {
				if _, ok := data[k]; !ok {
					data[k] = v
				}
			}
		}
		err = errors.Unwrap(err)
	}
	return data
}
