package admin

import "errors"

var (
	ErrDuplicateTrain  = errors.New("train id already exists")
	ErrTrainNotFound   = errors.New("train not found")
	ErrAlreadyReleased = errors.New("train already released")
	ErrInvalidTrain    = errors.New("invalid train definition")
)
