package core

// error_messages.go maps technical errors to user-facing messages with codes.
//
// Codes are grouped by category so support can tell at a glance where a
// failure came from:
//
//	DB001-DB099    storage constraints and connectivity
//	VAL001-VAL099  row validation
//	FILE001-FILE099 upload payload problems
//	UPL001-UPL099  upload lifecycle (limits, cancellation, timeouts)
//	ENT001-ENT099  entity selection
//	RATE001        request throttling
//	ERR000         fallback, check the logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import "strings"

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Storage constraints
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A record with this ID already exists",
			Action:  "Remove the repeated id or upload employees with update_existing=true",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate names in your CSV",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced department or job does not exist",
			Action:  "Upload departments and jobs before hired employees",
			Code:    "DB003",
		},
	},

	// Storage connectivity
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
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "storage unavailable",
		msg: UserMessage{
			Message: "Database is unavailable",
			Action:  "Rows committed before the failure were kept. Retry the upload; stored ids are skipped",
			Code:    "DB008",
		},
	},

	// Row validation
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure every row has an id and, for departments and jobs, a name",
			Code:    "VAL003",
		},
	},
	{
		pattern: "null value in column",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Ensure every row has an id and, for departments and jobs, a name",
			Code:    "VAL003",
		},
	},
	{
		pattern: "columns, got",
		msg: UserMessage{
			Message: "Row has more columns than expected",
			Action:  "Check the column order and quoting of the row",
			Code:    "VAL004",
		},
	},
	{
		pattern: "must be an integer",
		msg: UserMessage{
			Message: "Invalid id format detected",
			Action:  "Use whole numbers for id columns",
			Code:    "VAL007",
		},
	},
	{
		pattern: "must be greater than 0",
		msg: UserMessage{
			Message: "Ids must be positive",
			Action:  "Use ids starting at 1",
			Code:    "VAL008",
		},
	},
	{
		pattern: "invalid byte sequence",
		msg: UserMessage{
			Message: "Row contains characters that cannot be stored",
			Action:  "Save the file as UTF-8 and remove control characters",
			Code:    "VAL011",
		},
	},
	{
		pattern: "out of range",
		msg: UserMessage{
			Message: "A value is out of range",
			Action:  "Check ids and dates on the reported row",
			Code:    "VAL012",
		},
	},
	{
		pattern: "hire date is in the future",
		msg: UserMessage{
			Message: "Hire date is in the future",
			Action:  "Correct the datetime column or change UPLOAD_FUTURE_HIRE_POLICY",
			Code:    "VAL009",
		},
	},

	// Payload
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit (10MB)",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure file is comma-separated without a header row",
			Code:    "FILE002",
		},
	},
	{
		pattern: "malformed record",
		msg: UserMessage{
			Message: "Row could not be parsed",
			Action:  "Check quoting on the reported line",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Send the CSV in the multipart field \"file\"",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Please upload a CSV file with data rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid file extension",
		msg: UserMessage{
			Message: "File must be a CSV",
			Action:  "Upload a file with the .csv extension",
			Code:    "FILE006",
		},
	},
	{
		pattern: "file is not text",
		msg: UserMessage{
			Message: "The uploaded file is not a text CSV",
			Action:  "Export the sheet as CSV instead of uploading the workbook",
			Code:    "FILE007",
		},
	},
	{
		pattern: "invalid upload form",
		msg: UserMessage{
			Message: "The upload request could not be read",
			Action:  "Send the file as multipart/form-data",
			Code:    "FILE008",
		},
	},
	{
		pattern: "invalid query parameter",
		msg: UserMessage{
			Message: "A query parameter has an invalid value",
			Action:  "Use true/false for update_existing and a four digit year",
			Code:    "VAL010",
		},
	},

	// Upload lifecycle
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
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
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "UPL005",
		},
	},

	// Entity selection
	{
		pattern: "unknown entity",
		msg: UserMessage{
			Message: "Unknown upload type",
			Action:  "Use departments, jobs or hired_employees",
			Code:    "ENT001",
		},
	},
	{
		pattern: "update mode not supported",
		msg: UserMessage{
			Message: "Updating existing records is only supported for hired employees",
			Action:  "Remove update_existing from the request",
			Code:    "ENT002",
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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, a generic fallback message with code ERR000 is
// returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("decode: %w", ErrInvalidCSV))
//	// msg.Code == "FILE002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	return MapReason(err.Error())
}

// MapReason is MapError over a plain message. Row problems carry their reason
// as text, so their codes are derived with it.
func MapReason(reason string) UserMessage {
	reason = strings.ToLower(reason)
	for _, ep := range errorPatterns {
		if strings.Contains(reason, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}
