package core

// error_messages.go maps technical errors to messages for dashboard users.
//
// Each message carries a code users can quote to support. Codes by category:
//
// # Import (IMP001-IMP099)
//
//	IMP001 - No valid rows after normalization; nothing was deleted
//	IMP002 - Import stopped part way; earlier batches stay in the table
//	IMP003 - The table could not be emptied; nothing was inserted
//
// # Validation (VAL001-VAL099)
//
//	VAL001 - Invalid date
//	VAL003 - Required field empty
//	VAL004 - Required column missing from the header row
//	VAL007 - Unknown calculation method
//	VAL008 - Malformed project UUID
//
// # Orders (ORD001-ORD099)
//
//	ORD001 - Deletion not confirmed
//	ORD002 - Deletion with no rows selected
//
// # Projects (PRJ001-PRJ099)
//
//	PRJ001 - switch_project_calculation_method failed
//	PRJ002 - refresh_project_analytics_views failed
//
// # Database (DB001-DB099)
//
//	DB001 - Duplicate key          DB005 - Connection reset
//	DB003 - Foreign key            DB006 - Timeout
//	DB004 - Connection refused     DB007 - Deadlock
//	DB008 - Permission denied (row-level security)
//
// # File (FILE001-FILE099)
//
//	FILE001 - Too large    FILE003 - Not decodable
//	FILE002 - Invalid CSV  FILE004 - No file       FILE005 - Empty
//
// # Import sessions (UPL001-UPL099)
//
//	UPL002 - Another import holds the slot
//	UPL003 - Unknown or expired import ID
//	UPL004 - Request cancelled
//	UPL005 - Request timed out
//
// # Rate limiting (RATE001)
//
// Unmatched errors map to ERR000; check the logs for the original error.
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins, so specific patterns come first. IMP002 sits at the top
// because its message embeds the underlying database error.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Import outcomes
	{
		pattern: "records imported before error",
		msg: UserMessage{
			Message: "The import stopped part way through",
			Action:  "Rows from earlier batches were kept. Fix the problem and run the import again to replace them",
			Code:    "IMP002",
		},
	},
	{
		pattern: "no valid rows",
		msg: UserMessage{
			Message: "The file contains no valid order rows",
			Action:  "Check that rows have branch, operator, order number, reference and designation values",
			Code:    "IMP001",
		},
	},
	{
		pattern: "clear orders",
		msg: UserMessage{
			Message: "Existing orders could not be removed",
			Action:  "Nothing was imported. Please try again or contact support",
			Code:    "IMP003",
		},
	},

	// Validation
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "Required column is missing from CSV",
			Action:  "The file needs branch, operator, order number, reference, designation and quantity columns",
			Code:    "VAL004",
		},
	},
	{
		pattern: "invalid date",
		msg: UserMessage{
			Message: "Invalid date format detected",
			Action:  "Use DD/MM/YYYY, DD-MM-YYYY or YYYY-MM-DD",
			Code:    "VAL001",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure all required columns have values",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid calculation method",
		msg: UserMessage{
			Message: "Unknown calculation method",
			Action:  "Choose or_based or otc_based",
			Code:    "VAL007",
		},
	},
	{
		pattern: "invalid project uuid",
		msg: UserMessage{
			Message: "Invalid project identifier",
			Action:  "Reload the projects page and try again",
			Code:    "VAL008",
		},
	},

	// Orders
	{
		pattern: "confirmation required",
		msg: UserMessage{
			Message: "Deletion was not confirmed",
			Action:  "Confirm the deletion to remove the selected orders",
			Code:    "ORD001",
		},
	},
	{
		pattern: "no orders selected",
		msg: UserMessage{
			Message: "No orders were selected",
			Action:  "Select at least one order to delete",
			Code:    "ORD002",
		},
	},

	// Project procedures
	{
		pattern: "switch_project_calculation_method",
		msg: UserMessage{
			Message: "The calculation method could not be changed",
			Action:  "Check that the project still exists and try again",
			Code:    "PRJ001",
		},
	},
	{
		pattern: "refresh_project_analytics_views",
		msg: UserMessage{
			Message: "Project analytics could not be refreshed",
			Action:  "The change was saved. Refresh analytics again in a few moments",
			Code:    "PRJ002",
		},
	},

	// Database
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Check for duplicate entries in your CSV",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Ensure the referenced project or customer exists",
			Code:    "DB003",
		},
	},
	{
		pattern: "row-level security",
		msg: UserMessage{
			Message: "You are not allowed to change this data",
			Action:  "Ask an administrator for write access",
			Code:    "DB008",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "You are not allowed to change this data",
			Action:  "Ask an administrator for write access",
			Code:    "DB008",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// Files
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Save the sheet as CSV separated by ';', ',' or tabs",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with a header row and data rows",
			Code:    "FILE005",
		},
	},

	// Import sessions
	{
		pattern: "too many imports",
		msg: UserMessage{
			Message: "Another import is in progress",
			Action:  "Wait for it to finish and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "import not found",
		msg: UserMessage{
			Message: "Import session not found",
			Action:  "The import may have expired. Start a new import",
			Code:    "UPL003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. The
// first matching pattern wins; unmatched errors map to ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err; it returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
