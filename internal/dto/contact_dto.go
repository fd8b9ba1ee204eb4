package dto

// ContactRequest is the enquiry payload posted by the marketing site's
// contact form. Website is the honeypot field: a real visitor never
// fills it, so a non-empty value marks the submission as spam.
type ContactRequest struct {
	Name      string `json:"name" validate:"required,min=2,max=120"`
	Email     string `json:"email" validate:"required,email,max=160"`
	Phone     string `json:"phone" validate:"omitempty,max=40"`
	Level     string `json:"level" validate:"required,max=60"`
	Subject   string `json:"subject" validate:"required,max=150"`
	Notes     string `json:"notes" validate:"omitempty,max=2500"`
	Website   string `json:"website"`
	IPAddress string `json:"-"`
}

// ContactResponse communicates the status of an accepted enquiry.
type ContactResponse struct {
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
}
