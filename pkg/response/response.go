package response

import "errors"

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST     ErrCode = "REQUEST_FAILED"
	BAD_REQUEST        ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED  ErrCode = "VALIDATION_FAILED"
	NOT_FOUND          ErrCode = "NOT_FOUND"
	LOCKED             ErrCode = "LOCKED"
	SLOT_OCCUPIED      ErrCode = "SLOT_OCCUPIED"
	NO_AVAILABLE_HOURS ErrCode = "NO_AVAILABLE_HOURS"
	LOGIN_REQUIRED     ErrCode = "LOGIN_REQUIRED"
	SLOT_CONFLICT      ErrCode = "SLOT_CONFLICT"
	TOO_MANY_REQUESTS  ErrCode = "TOO_MANY_REQUESTS"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrLocked     = errors.New("resource is locked")
	ErrValidation = errors.New("validation failed")
)

func Error(code ErrCode, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    string(code),
			Message: msg,
		},
	}
}
