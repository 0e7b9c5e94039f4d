package models

import "time"

// TableCapacity maps each table type to the maximum number of concurrent
// reservations it can hold.
var TableCapacity = map[string]int{
	"1-2": 6,
	"3-4": 4,
	"4+":  2,
}

// Reservation represents a table booking. A user holds at most one
// reservation at a time.
type Reservation struct {
	ID           int       `json:"id"`
	TableType    string    `json:"table_type"`
	TimeStart    time.Time `json:"time_start"`
	GuestName    string    `json:"guest_name"`
	GuestPhone   string    `json:"guest_phone"`
	GuestEmail   string    `json:"guest_email"`
	GuestNotes   *string   `json:"guest_notes,omitempty"`
	GuestAddress *string   `json:"guest_address,omitempty"`
	UserID       int       `json:"user_id"`
}

// AdminReservation is a reservation joined with its owner's nickname for
// the administrator listing.
type AdminReservation struct {
	Reservation
	OwnerNickname string `json:"owner_nickname"`
}
