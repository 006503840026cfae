// Package core provides the business logic for splitting the sales file.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes printed by the
// CLI when a run fails.
//
//	FILE001 - Input not found: The source file could not be opened
//	          Action: Check the --input path or SALESNORM_INPUT
//
//	FILE002 - Input unreadable: The source file could not be read
//	          Action: Check the file is not truncated or locked
//
//	FILE003 - Output not writable: A table file could not be written
//	          Action: Check the output directory exists and is writable
//
//	FMT001  - Short row: A row has fewer than 11 fields
//	          Action: Fix the reported line; every row needs all 11 columns
//
//	FMT002  - Missing header: The source file is empty
//	          Action: The first line must be the column header
//
//	CFG001  - Invalid configuration: A flag or environment value is invalid
//	          Action: Check the listed settings; run with --help for usage
//
//	DB001   - Database load failed: Tables could not be loaded
//	          Action: Check DATABASE_URL and that the schema exists
//
//	RUN001  - Cancelled: The run was interrupted
//	          Action: Run again; outputs may be incomplete
//
//	ERR000  - Unknown error: An unexpected error occurred
//	          Action: Check the log output for details
//
// Typed errors ([FormatError], [IOError], [LoadError]) are matched first
// with errors.As. Remaining errors are matched case-insensitively against
// known patterns.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// coded is satisfied by the typed errors of this package.
type coded interface {
	error
	Code() string
}

var messagesByCode = map[string]UserMessage{
	CodeInputOpen: {
		Message: "The source file could not be opened",
		Action:  "Check the --input path or SALESNORM_INPUT",
		Code:    CodeInputOpen,
	},
	CodeInputRead: {
		Message: "The source file could not be read",
		Action:  "Check the file is not truncated or locked",
		Code:    CodeInputRead,
	},
	CodeOutputWrite: {
		Message: "A table file could not be written",
		Action:  "Check the output directory exists and is writable",
		Code:    CodeOutputWrite,
	},
	CodeShortRow: {
		Message: "A row has fewer than 11 fields",
		Action:  "Fix the reported line; every row needs all 11 columns",
		Code:    CodeShortRow,
	},
	CodeMissingHeader: {
		Message: "The source file is empty",
		Action:  "The first line must be the column header",
		Code:    CodeMissingHeader,
	},
	CodeDatabaseLoad: {
		Message: "Tables could not be loaded into the database",
		Action:  "Check DATABASE_URL and that the schema exists",
		Code:    CodeDatabaseLoad,
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var configMessage = UserMessage{
	Message: "The configuration is invalid",
	Action:  "Check the listed flags or environment variables; run with --help for usage",
	Code:    CodeConfig,
}

var errorPatterns = []errorPattern{
	{pattern: "config validation", msg: configMessage},
	{pattern: "config load", msg: configMessage},
	{pattern: "unexpected arguments", msg: configMessage},
	{pattern: "unknown flag", msg: configMessage},
	{pattern: "unknown shorthand flag", msg: configMessage},
	{pattern: "flag needs an argument", msg: configMessage},
	{pattern: "invalid argument", msg: configMessage},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was interrupted",
			Action:  "Run again; outputs may be incomplete",
			Code:    "RUN001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the log output for details",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Joined errors map to the first coded error they contain.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var c coded
	if errors.As(err, &c) {
		if msg, ok := messagesByCode[c.Code()]; ok {
			return msg
		}
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
