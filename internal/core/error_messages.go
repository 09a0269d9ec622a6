package core

// error_messages.go defines user-friendly error messages with codes for
// support reference. A file that cannot be audited is reported as an Info finding
// carrying one of these codes, so operators can quote it when asking for help.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File not found: The spreadsheet disappeared before it was read
//	          Action: Re-run the audit once the fulfillment folder is stable
//	          Patterns: "no such file", "cannot find the file"
//
//	FILE002 - Invalid spreadsheet: The file is corrupt or not a spreadsheet
//	          Action: Re-export the file from the source system as .xlsx
//	          Patterns: "open workbook", "invalid csv", "not a valid zip file"
//
//	FILE003 - Encoding error: The file contains unreadable characters
//	          Action: Save the file as UTF-8
//	          Patterns: "encoding error"
//
//	FILE004 - Permission denied: The file could not be opened
//	          Action: Check file permissions on the fulfillment share
//	          Patterns: "permission denied"
//
//	FILE005 - Empty file: The file has no header row or no worksheets
//	          Action: Check that the export finished before the audit ran
//	          Patterns: "empty file", "workbook has no sheets"
//
//	FILE006 - Unsupported format: The file extension is not .xlsx, .xlsm or .csv
//	          Action: Convert the file or narrow AUDIT_FILE_PATTERNS
//	          Patterns: "unsupported file format"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: A column the rule needs is absent
//	         Action: Check the file against the category's column list
//	         Patterns: "column not found"
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Configuration: Goals, categories or the policy file are invalid
//	         Action: Fix the reported settings and run again
//	         Patterns: "configuration"
//
//	CFG002 - Unknown rule: A policy names a rule that does not exist
//	         Action: Run `fulfillaudit policies` to list valid rule names
//	         Patterns: "unknown rule"
//
//	CFG003 - Unknown category: Category must be Sms, Mail or Calling
//	         Action: Fix AUDIT_CATEGORIES or the policy file
//	         Patterns: "unknown category"
//
// # Audit Errors (AUD001-AUD099)
//
//	AUD001 - Audit busy: Another audit is already running
//	         Action: Wait for it to finish and try again
//	         Patterns: "audit already running"
//
//	AUD002 - Audit cancelled: The audit was interrupted
//	         Action: Run the audit again
//	         Patterns: "context canceled"
//
//	AUD003 - Audit timeout: The audit took too long
//	         Action: Audit fewer categories or raise SERVER_REQUEST_TIMEOUT
//	         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check the logs for the technical error
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns are defined
// before general ones.

import (
	"fmt"
	"strings"
)

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

var (
	msgFileNotFound = UserMessage{
		Message: "File not found",
		Action:  "Re-run the audit once the fulfillment folder is stable",
		Code:    "FILE001",
	}
	msgInvalidSpreadsheet = UserMessage{
		Message: "The file is corrupt or not a spreadsheet",
		Action:  "Re-export the file from the source system as .xlsx",
		Code:    "FILE002",
	}
	msgEmptyFile = UserMessage{
		Message: "The file has no header row",
		Action:  "Check that the export finished before the audit ran",
		Code:    "FILE005",
	}
	msgConfiguration = UserMessage{
		Message: "The audit configuration is invalid",
		Action:  "Fix the reported settings and run again",
		Code:    "CFG001",
	}
)

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File errors (FILE001-FILE006)
	// =========================================================================
	{pattern: "no such file", msg: msgFileNotFound},
	{pattern: "cannot find the file", msg: msgFileNotFound},
	{pattern: "unsupported file format", msg: UserMessage{
		Message: "Unsupported file format",
		Action:  "Convert the file or narrow AUDIT_FILE_PATTERNS",
		Code:    "FILE006",
	}},
	{pattern: "empty file", msg: msgEmptyFile},
	{pattern: "workbook has no sheets", msg: msgEmptyFile},
	{pattern: "permission denied", msg: UserMessage{
		Message: "The file could not be opened",
		Action:  "Check file permissions on the fulfillment share",
		Code:    "FILE004",
	}},
	{pattern: "encoding error", msg: UserMessage{
		Message: "The file contains unreadable characters",
		Action:  "Save the file as UTF-8",
		Code:    "FILE003",
	}},
	{pattern: "open workbook", msg: msgInvalidSpreadsheet},
	{pattern: "invalid csv", msg: msgInvalidSpreadsheet},
	{pattern: "not a valid zip file", msg: msgInvalidSpreadsheet},

	// =========================================================================
	// Validation errors (VAL004)
	// =========================================================================
	{pattern: "column not found", msg: UserMessage{
		Message: "A column the rule needs is absent",
		Action:  "Check the file against the category's column list",
		Code:    "VAL004",
	}},

	// =========================================================================
	// Configuration errors (CFG001-CFG003)
	// =========================================================================
	{pattern: "unknown rule", msg: UserMessage{
		Message: "A policy names a rule that does not exist",
		Action:  "Run `fulfillaudit policies` to list valid rule names",
		Code:    "CFG002",
	}},
	{pattern: "unknown category", msg: UserMessage{
		Message: "Category must be Sms, Mail or Calling",
		Action:  "Fix AUDIT_CATEGORIES or the policy file",
		Code:    "CFG003",
	}},
	{pattern: "configuration", msg: msgConfiguration},

	// =========================================================================
	// Audit errors (AUD001-AUD003)
	// =========================================================================
	{pattern: "audit already running", msg: UserMessage{
		Message: "Another audit is already running",
		Action:  "Wait for it to finish and try again",
		Code:    "AUD001",
	}},
	{pattern: "context canceled", msg: UserMessage{
		Message: "The audit was interrupted",
		Action:  "Run the audit again",
		Code:    "AUD002",
	}},
	{pattern: "context deadline exceeded", msg: UserMessage{
		Message: "The audit took too long",
		Action:  "Audit fewer categories or raise SERVER_REQUEST_TIMEOUT",
		Code:    "AUD003",
	}},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the technical error",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, ERR000 is returned.
//
// Example:
//
//	err := dataset.Load("Client.txt")
//	msg := MapError(err)
//	// msg.Code == "FILE006"
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern.
// Returns false for nil and for the generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
