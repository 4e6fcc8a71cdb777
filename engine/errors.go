package engine

import (
	"fmt"
	"net/http"

	"github.com/ONSdigital/log.go/v2/log"
)

// DiscoveryError is returned when a dataset's tables could not be listed
type DiscoveryError struct {
	Dataset string
	Err     error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("failed to list tables in dataset %s: %s", e.Dataset, e.Err)
}

func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// LogData returns the fields to log alongside the error
func (e *DiscoveryError) LogData() log.Data {
	return log.Data{"dataset": e.Dataset}
}

// FetchError is returned when a single unit's data query fails
type FetchError struct {
	Unit Unit
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s.%s: %s", e.Unit.Dataset, e.Unit.Table, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// LogData returns the fields to log alongside the error
func (e *FetchError) LogData() log.Data {
	return log.Data{
		"dataset":   e.Unit.Dataset,
		"table":     e.Unit.Table,
		"row_limit": e.Unit.RowLimit,
	}
}

// RequestError is a bad request, rejected before any work is attempted
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Code returns the HTTP status for the request error
func (e *RequestError) Code() int {
	return http.StatusBadRequest
}

// Envelope returns the error envelope for the request error
func (e *RequestError) Envelope() Envelope {
	return Envelope{
		Status:  StatusError,
		Message: e.Message,
	}
}

// TotalFailure is returned when nothing could be discovered or fetched.
// Errors holds the per dataset or per unit failures.
type TotalFailure struct {
	Message string
	Errors  interface{}
}

func (e *TotalFailure) Error() string {
	return e.Message
}

// Code returns the HTTP status for the failure
func (e *TotalFailure) Code() int {
	return http.StatusBadGateway
}

// LogData returns the fields to log alongside the error
func (e *TotalFailure) LogData() log.Data {
	return log.Data{"errors": e.Errors}
}

// Envelope returns the error envelope for the failure
func (e *TotalFailure) Envelope() Envelope {
	return Envelope{
		Status:  StatusError,
		Message: e.Message,
		Errors:  e.Errors,
	}
}

// Messages for envelope level failures
const (
	MsgMissingTableName = "Missing table_name parameter"
	MsgInvalidTableName = "Invalid table_name parameter"
	MsgNoTablesFound    = "No tables found in datasets."
	MsgAllFetchesFailed = "Failed to fetch data from any table."
	MsgEncodingFailed   = "Failed to encode response."
)
