package domain

// Email is an outbound message handed to the mail dispatcher.
type Email struct {
	To      string
	Subject string
	Body    string
}
