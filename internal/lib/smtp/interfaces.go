// Package smtp предоставляет транспорт для отправки почтовых уведомлений.
package smtp

import "io"

// Client описывает сессию SMTP-сервера, достаточную для отправки
// одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// Transport устанавливает соединение с SMTP-сервером и сообщает
// адрес отправителя.
type Transport interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
