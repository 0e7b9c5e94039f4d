package models

import "errors"

var (
	ErrDuplicateUser    = errors.New("user with this nickname or email already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrMissingFields    = errors.New("required fields are missing")

	ErrDuplicateMenuItem = errors.New("menu item with this name already exists")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrInvalidPrice      = errors.New("invalid price value")

	ErrEmptyBasket   = errors.New("basket is empty")
	ErrOrderNotFound = errors.New("order not found")

	ErrUnknownTableType    = errors.New("unknown table type")
	ErrReservationExists   = errors.New("user already holds an active reservation")
	ErrNoCapacity          = errors.New("all tables of this type are taken")
	ErrInvalidTime         = errors.New("invalid date/time format, use YYYY-MM-DDTHH:MM")
	ErrReservationNotFound = errors.New("reservation not found")
)
