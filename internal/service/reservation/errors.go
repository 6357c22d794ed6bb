package reservation

import "errors"

var (
	ErrTrainNotFound     = errors.New("train not found")
	ErrInvalidRoute      = errors.New("stations not on route in travel order")
	ErrOutOfSaleWindow   = errors.New("boarding day outside sale window")
	ErrExceedsCapacity   = errors.New("request exceeds train capacity")
	ErrInsufficientSeats = errors.New("not enough seats")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAlreadyRefunded   = errors.New("order already refunded")
)
