package query

import "errors"

var (
	ErrTrainNotFound    = errors.New("train not found")
	ErrInvalidRoute     = errors.New("stations not on route in travel order")
	ErrOutOfSaleWindow  = errors.New("boarding day outside sale window")
	ErrTransferNotFound = errors.New("no feasible transfer")
)
