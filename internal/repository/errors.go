package repository

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrDuplicateTrainID  = errors.New("train id already exists")
	ErrAlreadyReleased   = errors.New("train already released")
	ErrInvalidTrain      = errors.New("invalid train definition")
	ErrInvalidRoute      = errors.New("stations not in route order")
	ErrOutOfSaleWindow   = errors.New("day outside sale window")
	ErrExceedsCapacity   = errors.New("count exceeds train capacity")
	ErrInsufficientSeats = errors.New("insufficient seats")
	ErrAlreadyRefunded   = errors.New("order already refunded")
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrDuplicateUser     = errors.New("username already exists")
)
