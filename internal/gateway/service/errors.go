package service

import "github.com/samber/oops"

// Error codes carried by service errors. Handlers map them to statuses.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeAccountExists      = "ACCOUNT_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
)

// MsgInvalidCredentials is deliberately the same for unknown accounts and
// wrong passwords.
const MsgInvalidCredentials = "Invalid email, username or password."

// ErrorCode returns the oops code of err, or "" for plain errors.
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	code, _ := oopsErr.Code().(string)
	return code
}
