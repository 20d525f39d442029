package usecase

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyResolved = errors.New("request already resolved")
	ErrNotOwner        = errors.New("caller is not the owner")
	ErrSelfAccept      = errors.New("cannot accept own request")
	ErrUnauthorized    = errors.New("unauthorized")
)
