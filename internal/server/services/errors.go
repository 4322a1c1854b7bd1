package services

import "errors"

var (
	ErrTooMany              = errors.New("too many reactions")
	ErrTooFew               = errors.New("no reaction to remove")
	ErrCannotSendEmail      = errors.New("cannot send email")
	ErrCannotVerifyPassword = errors.New("cannot verify password")
	ErrCannotDecodeBase64   = errors.New("cannot decode base64")
	ErrCannotPutObject      = errors.New("cannot put s3 object")
)
