package errors

import (
	"context"
	"errors"
	"strings"

	"github.com/ikkim/dietprefs-client/pkg/dietprefs"
)

// ErrorInfo is the code and user-facing message for a failure
type ErrorInfo struct {
	Code    string // see codes.go
	Message string
}

// ParseError collapses transport, backend and validation failures into a
// single recoverable ErrorInfo. context names the operation ("search",
// "next page", "menu items", "vote") and is folded into generic messages.
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "Unknown error occurred",
		}
	}

	errStr := err.Error()

	// 1. Remote client errors
	var apiErr *dietprefs.APIError
	if errors.As(err, &apiErr) {
		return parseAPIError(apiErr, context)
	}
	if errors.Is(err, dietprefs.ErrMalformedResponse) {
		return ErrorInfo{
			Code:    RemoteMalformedResponse,
			Message: "The server sent an unexpected response while loading " + orDefault(context, "data"),
		}
	}
	if errors.Is(err, dietprefs.ErrNetworkError) || isContextError(err) {
		return ErrorInfo{
			Code:    RemoteNetworkError,
			Message: "Could not reach the server. Check your connection and try again",
		}
	}

	// 2. Session-layer errors (defined in the service package)
	switch {
	case strings.Contains(errStr, "no more pages"):
		return ErrorInfo{Code: SearchNoMorePages, Message: "All results are already loaded"}
	case strings.Contains(errStr, "already in progress"):
		return ErrorInfo{Code: SearchInProgress, Message: "Still loading the next page"}
	case strings.Contains(errStr, "superseded"):
		return ErrorInfo{Code: SearchSuperseded, Message: "A newer search replaced this one"}
	case strings.Contains(errStr, "no vendor selected"):
		return ErrorInfo{Code: VendorNotSelected, Message: "Select a vendor first"}
	case strings.Contains(errStr, "unknown preference"):
		return ErrorInfo{Code: ValidationUnknownTag, Message: "Unknown dietary preference"}
	case strings.Contains(errStr, "unknown sort column"):
		return ErrorInfo{Code: ValidationUnknownSort, Message: "Unknown sort column"}
	case strings.Contains(errStr, "unknown vote type"):
		return ErrorInfo{Code: ValidationInvalidVote, Message: "Vote must be 'up' or 'down'"}
	case strings.Contains(errStr, "invalid user slot"):
		return ErrorInfo{Code: ValidationInvalidUser, Message: "User must be 1 or 2"}
	case strings.Contains(errStr, "price must be positive"):
		return ErrorInfo{Code: ValidationInvalidPrice, Message: "Price must be a positive number"}
	case strings.Contains(errStr, "set through max price"):
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Set a max price instead of toggling low price"}
	case strings.Contains(errStr, "item not found"):
		return ErrorInfo{Code: ResourceNotFound, Message: "Menu item not found"}
	case strings.Contains(errStr, "vendor not found"):
		return ErrorInfo{Code: ResourceNotFound, Message: "Vendor not found"}
	}

	// 3. Default
	code := InternalServerError
	if context == "export" {
		code = InternalExportFailed
	}
	return ErrorInfo{
		Code:    code,
		Message: getDefaultErrorMessage(context),
	}
}

func parseAPIError(apiErr *dietprefs.APIError, context string) ErrorInfo {
	switch {
	case errors.Is(apiErr, dietprefs.ErrNotFound):
		msg := apiErr.Detail
		if msg == "" {
			msg = "Not found"
		}
		return ErrorInfo{Code: ResourceNotFound, Message: msg}
	case errors.Is(apiErr, dietprefs.ErrInvalidRequest):
		msg := "The server rejected the request"
		if apiErr.Detail != "" {
			msg += ": " + apiErr.Detail
		}
		return ErrorInfo{Code: RemoteRejected, Message: msg}
	case errors.Is(apiErr, dietprefs.ErrServerError):
		return ErrorInfo{
			Code:    RemoteServerError,
			Message: "The server had a problem with " + orDefault(context, "the request") + ". Please try again",
		}
	default:
		return ErrorInfo{Code: RemoteRejected, Message: apiErr.Error()}
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func getDefaultErrorMessage(context string) string {
	switch context {
	case "search":
		return "Search failed"
	case "next page":
		return "Error loading next page"
	case "menu items":
		return "Failed to load menu items"
	case "vote":
		return "Failed to vote"
	case "config":
		return "Failed to load configuration"
	case "export":
		return "Failed to export results"
	default:
		return "Unknown error occurred"
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
