package errors

// Error codes surfaced to the UI collaborator.
// Format: CATEGORY_SPECIFIC_DETAIL

const (
	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationUnknownTag   = "VALIDATION_UNKNOWN_PREFERENCE"
	ValidationUnknownSort  = "VALIDATION_UNKNOWN_SORT_COLUMN"
	ValidationInvalidVote  = "VALIDATION_INVALID_VOTE"
	ValidationInvalidPrice = "VALIDATION_INVALID_PRICE"
	ValidationInvalidUser  = "VALIDATION_INVALID_USER"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound  = "RESOURCE_NOT_FOUND"
	VendorNotSelected = "VENDOR_NOT_SELECTED"

	// ==================== Search (SEARCH_) ====================
	SearchNoMorePages = "SEARCH_NO_MORE_PAGES"
	SearchSuperseded  = "SEARCH_SUPERSEDED"
	SearchInProgress  = "SEARCH_IN_PROGRESS"

	// ==================== Remote backend (REMOTE_) ====================
	RemoteNetworkError      = "REMOTE_NETWORK_ERROR"
	RemoteRejected          = "REMOTE_REJECTED"
	RemoteServerError       = "REMOTE_SERVER_ERROR"
	RemoteMalformedResponse = "REMOTE_MALFORMED_RESPONSE"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError  = "INTERNAL_SERVER_ERROR"
	InternalExportFailed = "INTERNAL_EXPORT_FAILED"
)
