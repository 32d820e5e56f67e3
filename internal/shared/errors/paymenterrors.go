package errors

import "net/http"

// Payment provider failure kinds.
const (
	// ErrorTypeConnection is a transport failure or timeout talking to the provider.
	ErrorTypeConnection ErrorType = "connection_error"
	// ErrorTypeRemoteRejected is a well-formed provider response with a non-success return code.
	ErrorTypeRemoteRejected ErrorType = "remote_rejected"
	// ErrorTypeSignatureMismatch is an inbound notification whose mac does not verify.
	ErrorTypeSignatureMismatch ErrorType = "signature_mismatch"
	// ErrorTypeInvalidRequest is a local precondition failure caught before any remote call.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	// ErrorTypeAlreadyTerminal marks an idempotent no-op on an order that is already settled or failed.
	ErrorTypeAlreadyTerminal ErrorType = "already_terminal"
)

func NewConnectionError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeConnection, http.StatusBadGateway, message, details)
}

// NewRemoteRejectedError carries the provider's return_message as Details.
func NewRemoteRejectedError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeRemoteRejected, http.StatusUnprocessableEntity, message, details)
}

func NewSignatureMismatchError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeSignatureMismatch, http.StatusUnauthorized, message, details)
}

func NewInvalidRequestError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeInvalidRequest, http.StatusBadRequest, message, details)
}

// NewAlreadyTerminalError is returned by settlement when there is nothing left to do.
// Callers treat it as success.
func NewAlreadyTerminalError(message string, details ...string) *AppError {
	return newAppError(ErrorTypeAlreadyTerminal, http.StatusOK, message, details)
}

func IsConnectionError(err error) bool {
	return isType(err, ErrorTypeConnection)
}

func IsRemoteRejectedError(err error) bool {
	return isType(err, ErrorTypeRemoteRejected)
}

func IsSignatureMismatchError(err error) bool {
	return isType(err, ErrorTypeSignatureMismatch)
}

func IsInvalidRequestError(err error) bool {
	return isType(err, ErrorTypeInvalidRequest)
}

func IsAlreadyTerminalError(err error) bool {
	return isType(err, ErrorTypeAlreadyTerminal)
}
