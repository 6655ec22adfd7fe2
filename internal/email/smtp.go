package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
)

// DefaultTimeout aplica a la conexión y al socket.
const DefaultTimeout = 5 * time.Second

// ImplicitTLSPort es el puerto SMTPS; en cualquier otro se negocia STARTTLS
// si el servidor lo ofrece.
const ImplicitTLSPort = 465

// MailTransport implementa Transport con go-mail.
type MailTransport struct{}

// NewMailTransport crea el transport real.
func NewMailTransport() *MailTransport { return &MailTransport{} }

// Dial conecta, negocia TLS y autentica. La verificación de certificados
// está deshabilitada; se exige TLS 1.2 como mínimo.
func (t *MailTransport) Dial(ctx context.Context, cfg DialConfig) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.Timeout = timeout
	d.SSL = cfg.SSL
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
	}

	sc, err := d.Dial()
	if err != nil {
		return nil, fmt.Errorf("smtp dial %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return sc, nil
}
