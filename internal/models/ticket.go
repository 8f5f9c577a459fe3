package models

import "time"

// Статусы обращения в поддержку.
const (
	TicketOpen     = "open"
	TicketAnswered = "answered"
	TicketClosed   = "closed"
)

// Ticket — обращение пользователя в поддержку.
type Ticket struct {
	ID        string
	UserUID   string
	Subject   string
	Body      string
	Status    string  // open, answered, closed
	Answer    *string // Ответ администратора
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DummyTicket используется для приёма данных из JSON-запроса.
type DummyTicket struct {
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Body    string `json:"body" validate:"required,min=10"`
}
