package email

import (
	"time"

	store "github.com/dropDatabas3/mailadmin/internal/store"
)

// TemplateID identifica las entradas de email_logs generadas por la prueba.
const TemplateID = "smtp_test"

// ─── DTOs ───

// Request es el body de POST /smtp/test.
type Request struct {
	// SMTP nil usa la configuración guardada en settings.smtp.
	SMTP      *store.SMTPSettings `json:"smtp"`
	TestEmail string              `json:"testEmail"`

	// Lang es el valor de Accept-Language del request (opcional).
	Lang string `json:"-"`
}

// Result es el resultado de una prueba.
type Result struct {
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Category  Category      `json:"category,omitempty"`
	MessageID string        `json:"messageId,omitempty"`
	LogID     string        `json:"logId,omitempty"`
	Duration  time.Duration `json:"-"`
}

// DialConfig son los parámetros de una conexión.
type DialConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	SSL      bool          // TLS implícito (puerto 465)
	Timeout  time.Duration // conexión y lecturas/escrituras
}
