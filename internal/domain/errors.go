package domain

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrChannelNotFound   = errors.New("channel not found")
	ErrMessageNotFound   = errors.New("message not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrSystemUserMissing = errors.New("system user not found")
)
