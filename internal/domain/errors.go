package domain

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrCredentialMismatch = errors.New("password does not match")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrBookingNotFound    = errors.New("no such booking")
	ErrAlreadyBooked      = errors.New("flight is already booked by passenger")
	ErrFlightNotFound     = errors.New("flight not found")
	ErrInvalidSeatClass   = errors.New("invalid seat class")
	ErrNoSeatsAvailable   = errors.New("no available seats")
	ErrInvalidInput       = errors.New("invalid input")
)
