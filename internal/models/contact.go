package models

import "time"

// ContactEnquiry is a validated contact-form submission from the public
// marketing site.
type ContactEnquiry struct {
	ReferenceID string    `json:"reference_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	Level       string    `json:"level"`
	Subject     string    `json:"subject"`
	Notes       string    `json:"notes,omitempty"`
	Checksum    string    `json:"-"`
	ReceivedAt  time.Time `json:"received_at"`
}
