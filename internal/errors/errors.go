package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when signing up with an email already in use.
	ErrEmailTaken = errors.New("email already exists")
	// ErrPasswordTooLong is returned when a password exceeds the hasher's input limit.
	ErrPasswordTooLong = errors.New("password too long")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrSelfDelete is returned when an admin tries to delete their own account.
	ErrSelfDelete = errors.New("cannot delete own account")
	// ErrMachineNotFound is returned when a machine is absent or not owned by the requester.
	ErrMachineNotFound = errors.New("machine not found")
	// ErrDuplicateMachineName is returned when the owner already has a machine with that name.
	ErrDuplicateMachineName = errors.New("duplicate machine name")
	// ErrAlertNotFound is returned when an alert is not found.
	ErrAlertNotFound = errors.New("alert not found")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// Echo converts the error into an echo error carrying the JSON body.
func (e *HTTPError) Echo() *echo.HTTPError {
	return echo.NewHTTPError(e.StatusCode, e.ToErrorResponse())
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised is
// a store failure; its text is never sent to the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, "Invalid email or password", "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, "Email already exists", "EMAIL_TAKEN")
	case errors.Is(err, ErrPasswordTooLong):
		return NewHTTPError(http.StatusBadRequest, "Password must be at most 72 bytes", "PASSWORD_TOO_LONG")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, "User not found", "USER_NOT_FOUND")
	case errors.Is(err, ErrSelfDelete):
		return NewHTTPError(http.StatusBadRequest, "You cannot delete your own account", "SELF_DELETE")
	case errors.Is(err, ErrMachineNotFound):
		return NewHTTPError(http.StatusNotFound, "Machine not found", "MACHINE_NOT_FOUND")
	case errors.Is(err, ErrDuplicateMachineName):
		return NewHTTPError(http.StatusBadRequest, "A machine with this name already exists", "DUPLICATE_MACHINE_NAME")
	case errors.Is(err, ErrAlertNotFound):
		return NewHTTPError(http.StatusNotFound, "Alert not found", "ALERT_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Database error", "DATABASE_ERROR")
	}
}

// BadRequest builds a 400 echo error with the given message.
func BadRequest(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Error: message, Code: "VALIDATION_ERROR"})
}

// HTTPErrorHandler renders every error as {"error": ...} JSON. Unmatched
// routes and methods become 404 "Route not found"; 5xx causes are logged.
func HTTPErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolve(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err,
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", "error", writeErr)
		}
	}
}

func resolve(err error) (int, ErrorResponse) {
	if errors.Is(err, echo.ErrNotFound) || errors.Is(err, echo.ErrMethodNotAllowed) {
		return http.StatusNotFound, ErrorResponse{Error: "Route not found", Code: "ROUTE_NOT_FOUND"}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		switch m := he.Message.(type) {
		case ErrorResponse:
			return he.Code, m
		case *ErrorResponse:
			return he.Code, *m
		case string:
			return he.Code, ErrorResponse{Error: m}
		default:
			return he.Code, ErrorResponse{Error: http.StatusText(he.Code)}
		}
	}

	mapped := MapErrorToHTTP(err)
	return mapped.StatusCode, mapped.ToErrorResponse()
}
