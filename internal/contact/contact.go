package contact

// Message is a visitor enquiry sent from the contact page.
type Message struct {
	Name    string `json:"name" validate:"required,singleline"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,singleline"`
	Message string `json:"message" validate:"required,min=5"`
}
