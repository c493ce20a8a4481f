package core

// error_messages.go maps errors to coded user messages.
//
// Every error that reaches a client is mapped to a user message with a code
// support staff can look up here. Codes are grouped by category:
//
//	VAL001 - Invalid ISO code: code is not exactly 3 characters
//	VAL002 - Name too long: a name exceeds 100 characters
//	VAL003 - Validation failed: any other rejected input
//	VAL004 - Invalid name: a name contains a NUL character
//	NF001  - Unknown ISO code: the code was never merged
//	REQ001 - Invalid request body: body is not the expected JSON
//	REQ002 - Body too large: body exceeds SERVER_MAX_BODY_BYTES
//	REQ003 - Request cancelled: client went away
//	MRG001 - Busy: every merge slot stayed occupied for MERGE_MAX_WAIT_TIME
//	DB001-DB007 - Storage faults (constraints, connectivity, timeouts, deadlocks)
//	RATE001 - Rate limited
//	ERR000 - Anything else; check the server logs for the technical error
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage is the client-facing description of an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Validation (VAL001-VAL004)
	{
		pattern: "invalid iso code",
		msg: UserMessage{
			Message: "ISO code must be exactly 3 characters",
			Action:  "Use the ISO 3166-1 alpha-3 code, for example CAN",
			Code:    "VAL001",
		},
	},
	{
		pattern: "name too long",
		msg: UserMessage{
			Message: "Country name exceeds 100 characters",
			Action:  "Shorten or remove the offending name",
			Code:    "VAL002",
		},
	},
	{
		pattern: "invalid name",
		msg: UserMessage{
			Message: "Country name contains a NUL character",
			Action:  "Remove control characters from the names",
			Code:    "VAL004",
		},
	},
	{
		pattern: "validation failed",
		msg: UserMessage{
			Message: "The request contains invalid values",
			Action:  "Check the request against the API documentation",
			Code:    "VAL003",
		},
	},

	// Lookup (NF001)
	{
		pattern: "iso code not found",
		msg: UserMessage{
			Message: "ISO code is not registered",
			Action:  "Merge the code and its names before matching against it",
			Code:    "NF001",
		},
	},

	// Request (REQ001-REQ003)
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "Request body is not valid JSON for this endpoint",
			Action:  "Send a JSON body with the documented fields",
			Code:    "REQ001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request body is too large",
			Action:  "Split the batch into smaller requests",
			Code:    "REQ002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ003",
		},
	},

	// Merge concurrency (MRG001)
	{
		pattern: "too many concurrent merges",
		msg: UserMessage{
			Message: "The service is busy with other merges",
			Action:  "Please wait a moment and try again",
			Code:    "MRG001",
		},
	},

	// Storage constraints (DB001-DB003)
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A conflicting record already exists",
			Action:  "Retry the request; existing rows are kept",
			Code:    "DB001",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A value must be unique but already exists",
			Action:  "Retry the request; existing rows are kept",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key",
		msg: UserMessage{
			Message: "Referenced country code does not exist",
			Action:  "Please try again",
			Code:    "DB003",
		},
	},

	// Storage connectivity (DB004-DB007)
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
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller batch or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller batch or try again later",
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

	// Rate limiting (RATE001)
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is the ERR000 fallback.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user message. A nil error maps to the zero
// UserMessage; an unrecognized one to ERR000.
//
//	msg := MapError(fmt.Errorf("%w: XYZ", ErrCodeNotFound))
//	// msg.Code == "NF001"
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

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
