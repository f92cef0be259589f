package werrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for the HTTP boundary.
type Code string

const (
	CodeValidation     Code = "VALIDATION"
	CodeNotFound       Code = "NOT_FOUND"
	CodeCorrelation    Code = "CORRELATION_KEY"
	CodeQuantityPolicy Code = "QUANTITY_POLICY"
	CodeReferential    Code = "REFERENTIAL_INTEGRITY"
	CodeState          Code = "STATE_TRANSITION"
	CodeInternal       Code = "INTERNAL"
)

// Message catalog keys. The i18n catalog resolves these to localized text.
const (
	KeyInvalidQuantity               = "invalid_quantity"
	KeyHeaderNotFound                = "header_not_found"
	KeyLineNotFound                  = "line_not_found"
	KeyImportLineNotFound            = "import_line_not_found"
	KeyRouteNotFound                 = "route_not_found"
	KeyLineSerialNotFound            = "line_serial_not_found"
	KeyStockYapMismatch              = "stock_yap_mismatch"
	KeySerialNotMatch                = "serial_not_match"
	KeyQuantityExceeded              = "quantity_exceeded"
	KeyQuantityMismatch              = "quantity_mismatch"
	KeyAllOrderItemsMustBeCollected  = "all_order_items_must_be_collected"
	KeyCorrelationKeyMissing         = "correlation_key_missing"
	KeyCorrelationKeyNotFound        = "correlation_key_not_found"
	KeyImportLineRoutesExist         = "import_line_routes_exist"
	KeyImportLineLineSerialsExist    = "import_line_line_serials_exist"
	KeyLineLineSerialsExist          = "line_line_serials_exist"
	KeyLineImportLinesExist          = "line_import_lines_exist"
	KeyLineSerialRoutesExist         = "line_serial_routes_exist"
	KeyInsufficientQuantityAfterDelete = "insufficient_quantity_after_delete"
	KeyApprovalUpdateError           = "approval_update_error"
	KeyAlreadyCompleted              = "already_completed"
	KeyInvalidCredentials            = "invalid_credentials"
	KeyInternalError                 = "internal_error"
)

// Error is the typed error every repository returns across the service
// boundary. Diagnostic carries the raw values (line id, expected, collected,
// inner error text) for logs; the catalog key + args produce the localized
// user message.
type Error struct {
	Code       Code
	Key        string
	Args       []interface{}
	Diagnostic string
	Err        error
}

func (e *Error) Error() string {
	if e.Diagnostic != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Key, e.Diagnostic)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Key)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDiagnostic attaches a raw diagnostic string and returns the error.
func (e *Error) WithDiagnostic(format string, args ...interface{}) *Error {
	e.Diagnostic = fmt.Sprintf(format, args...)
	return e
}

func New(code Code, key string, args ...interface{}) *Error {
	return &Error{Code: code, Key: key, Args: args}
}

// Wrap converts an unclassified error (usually from the store) into an
// internal Error, concatenating the inner error text into the diagnostic.
func Wrap(err error, key string) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: CodeInternal, Key: key, Diagnostic: err.Error(), Err: err}
}

// From extracts the typed error, or wraps it as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, KeyInternalError)
}

// CodeOf returns the code of err, CodeInternal when unclassified.
func CodeOf(err error) Code {
	return From(err).Code
}

// KeyOf returns the catalog key of err.
func KeyOf(err error) string {
	return From(err).Key
}

// HTTPStatus maps an error to the status its controller responds with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
