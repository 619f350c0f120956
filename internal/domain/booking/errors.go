package booking

import (
	"errors"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrClassFull        = errors.New("class is full")
	ErrAlreadyBooked    = errors.New("already booked")
	ErrClassCancelled   = errors.New("class is cancelled")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
)

func IsErrBadRequest(err error) bool       { return errors.Is(err, ErrBadRequest) }
func IsErrUnauthorized(err error) bool     { return errors.Is(err, ErrUnauthorized) }
func IsErrNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsErrClassFull(err error) bool        { return errors.Is(err, ErrClassFull) }
func IsErrAlreadyBooked(err error) bool    { return errors.Is(err, ErrAlreadyBooked) }
func IsErrClassCancelled(err error) bool   { return errors.Is(err, ErrClassCancelled) }
func IsErrAlreadyCancelled(err error) bool { return errors.Is(err, ErrAlreadyCancelled) }
