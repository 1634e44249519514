package tienlen

import "errors"

var (
	ErrInvalidCombo = errors.New("invalid combo")
	ErrIllegalMove  = errors.New("move does not beat last play")
	ErrIllegalPass  = errors.New("cannot pass without a last play")
)
