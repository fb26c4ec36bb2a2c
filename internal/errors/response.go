package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error body of the session API
type ErrorResponse struct {
	Error   string `json:"error"`   // code from codes.go
	Message string `json:"message"` // human-readable message
}

// RespondWithError writes an error body with the given status and code.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// RespondWithParsedError maps err through ParseError and picks the status
// from the resulting code.
func RespondWithParsedError(c *gin.Context, err error, context string) {
	info := ParseError(err, context)
	RespondWithError(c, StatusFor(info.Code), info.Code, info.Message)
}

// StatusFor returns the HTTP status the session API uses for a code.
func StatusFor(code string) int {
	switch code {
	case ValidationInvalidInput, ValidationInvalidID, ValidationUnknownTag,
		ValidationUnknownSort, ValidationInvalidVote, ValidationInvalidPrice,
		ValidationInvalidUser:
		return http.StatusBadRequest
	case ResourceNotFound:
		return http.StatusNotFound
	case VendorNotSelected, SearchNoMorePages, SearchSuperseded, SearchInProgress:
		return http.StatusConflict
	case RemoteNetworkError, RemoteRejected, RemoteServerError, RemoteMalformedResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

// InternalError answers 500 with a generic message when none is given.
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// ValidationError carries per-field validation messages
type ValidationError struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:   ValidationInvalidInput,
		Message: "Invalid input",
		Fields:  fields,
	})
}
