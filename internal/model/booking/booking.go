package booking

import "time"

// Request is the booking form as submitted by the page.
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Message string `json:"message,omitempty"`
}

// Booking is an accepted request handed to the email dispatch service.
type Booking struct {
	ID        string    `json:"id"`
	Request   Request   `json:"request"`
	CreatedAt time.Time `json:"createdAt"`
}
