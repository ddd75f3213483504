// Package errors provides structured error handling for the coefficient service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Resolution errors
	CodeUnknownSystem     Code = "UNKNOWN_SYSTEM"
	CodeUnknownCategory   Code = "UNKNOWN_CATEGORY"
	CodeInvalidDimensions Code = "INVALID_DIMENSIONS"

	// Request errors
	CodeMalformedRequest Code = "MALFORMED_REQUEST"

	// Dataset errors
	CodeDatasetInvalid  Code = "DATASET_INVALID"
	CodeDatasetNotFound Code = "DATASET_NOT_FOUND"

	// Transport errors
	CodeTransportFailure Code = "TRANSPORT_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeInvalidDimensions,
		CodeMalformedRequest:
		return http.StatusBadRequest

	// Not found - configuration defects on the caller side
	case CodeUnknownSystem,
		CodeUnknownCategory,
		CodeDatasetNotFound:
		return http.StatusNotFound

	// Bad gateway - downstream exchange failures
	case CodeTransportFailure:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
