package common

import "errors"

// ErrInvalidInput malformed request body or parameters
var ErrInvalidInput = errors.New("invalid input")
