package domain

import "errors"

// ErrEmptyAddress is returned by ParseAddress for blank input.
var ErrEmptyAddress = errors.New("address must not be empty")
