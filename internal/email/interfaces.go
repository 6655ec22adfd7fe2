package email

import (
	"context"
	"io"

	store "github.com/dropDatabas3/mailadmin/internal/store"
)

// Transport abre conexiones SMTP ya verificadas (conexión + EHLO + TLS + AUTH).
type Transport interface {
	Dial(ctx context.Context, cfg DialConfig) (Conn, error)
}

// Conn es una conexión verificada. Send puede llamarse una vez por mensaje;
// Close debe llamarse siempre.
type Conn interface {
	Send(from string, to []string, msg io.WriterTo) error
	Close() error
}

// LogStore es lo que el servicio necesita del resource store.
type LogStore interface {
	Append(ctx context.Context, name string, item store.Item) (store.Item, error)
	SMTPSettings(ctx context.Context) (store.SMTPSettings, error)
}
