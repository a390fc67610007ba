package dto

import "time"

// ErrorResponse is the standard JSON error body returned by the API.
//
// Fields match the API contract; ErrorDetails is omitted when there
// is no inner error to expose.
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid target dataset"`
	ErrorDetails string    `json:"error,omitempty" example:"duplicate MID \"A\""`
	Timestamp    time.Time `json:"timestamp" example:"2026-08-30T12:00:00Z"`
}

// NewErrorResponse builds an ErrorResponse, attaching err.Error() as
// details when err is non-nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	e := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		e.ErrorDetails = err.Error()
	}
	return e
}

// Error implements the error interface so an ErrorResponse can travel
// through middleware as a plain error.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}
