package handler

import "errors"

var (
	errServiceUnavailable = errors.New("service unavailable")
	errInvalidMinutes     = errors.New("invalid minutes parameter")
)
