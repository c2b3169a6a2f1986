package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error carrying a stable code. HTTPStatus is used
// only by the status API when the error reaches a handler.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err (or anything it wraps) is an AppError with code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}

// Error codes.
const (
	CodeArithmetic         = "ARITH_001"
	CodeCrypto             = "CRYPTO_001"
	CodeInvalidArgument    = "ARG_001"
	CodeNonceExhausted     = "NONCE_001"
	CodeChannelDispute     = "CHAN_001"
	CodeInvalidTransition  = "CHAN_002"
	CodeConnectorStart     = "CONN_001"
	CodeAlreadyInitialized = "CONN_002"
	CodeNotStarted         = "CONN_003"
	CodeLedger             = "LEDGER_001"
	CodeStore              = "SYS_001"
	CodeNotFound           = "SYS_002"
	CodeRateLimited        = "SYS_003"
)

// ---- Values (ARITH) ----

func ErrArithmetic(message string) *AppError {
	return New(CodeArithmetic, message, http.StatusUnprocessableEntity)
}

// ---- Crypto (CRYPTO) ----

func ErrCrypto(message string) *AppError {
	return New(CodeCrypto, message, http.StatusBadRequest)
}

func WrapCrypto(message string, err error) *AppError {
	return Wrap(CodeCrypto, message, http.StatusBadRequest, err)
}

// ---- Arguments (ARG) ----

func ErrInvalidArgument(message string) *AppError {
	return New(CodeInvalidArgument, message, http.StatusBadRequest)
}

// ---- Nonces (NONCE) ----

func ErrNonceExhausted(nonce, confirmed uint64) *AppError {
	return New(CodeNonceExhausted,
		fmt.Sprintf("nonce %d is below the last confirmed nonce %d", nonce, confirmed),
		http.StatusConflict)
}

// ---- Channels (CHAN) ----

func ErrChannelDispute(message string) *AppError {
	return New(CodeChannelDispute, message, http.StatusConflict)
}

func ErrInvalidTransition(from, op string) *AppError {
	return New(CodeInvalidTransition,
		fmt.Sprintf("cannot %s a channel in state %s", op, from),
		http.StatusConflict)
}

// ---- Connector (CONN) ----

func ErrConnectorStart(message string, err error) *AppError {
	return Wrap(CodeConnectorStart, message, http.StatusServiceUnavailable, err)
}

func ErrAlreadyInitialized() *AppError {
	return New(CodeAlreadyInitialized, "on-chain values already initialized", http.StatusConflict)
}

func ErrNotStarted() *AppError {
	return New(CodeNotStarted, "connector is not started", http.StatusServiceUnavailable)
}

// ---- Infrastructure (LEDGER / SYS) ----

func ErrLedger(message string, err error) *AppError {
	return Wrap(CodeLedger, message, http.StatusBadGateway, err)
}

func ErrStore(err error) *AppError {
	return Wrap(CodeStore, "store failure", http.StatusInternalServerError, err)
}

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrRateLimitExceeded() *AppError {
	return New(CodeRateLimited, "rate limit exceeded", http.StatusTooManyRequests)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap(CodeStore, "Internal server error", http.StatusInternalServerError, err)
}
