package store

import (
	"encoding/json"
	"fmt"
)

// Vistas tipadas de los items que la aplicación conoce. El store guarda Items
// genéricos; estos tipos se usan al producir o consumir items concretos.

// EmailTemplate es un item de la colección notifications.
// Los placeholders ({{name}}) de Content se guardan tal cual, sin sustituir.
type EmailTemplate struct {
	ID       string          `json:"id"`
	Subject  string          `json:"subject"`
	Template string          `json:"template"`
	Active   bool            `json:"active"`
	Content  TemplateContent `json:"content"`
}

type TemplateContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Estados de EmailLog.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// EmailLog es un item de la colección email_logs (append-only).
type EmailLog struct {
	ID         string `json:"id,omitempty"`
	TemplateID string `json:"templateId"`
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
	MessageID  string `json:"messageId,omitempty"`
	Duration   int64  `json:"duration"` // ms
	SentAt     string `json:"sentAt"`   // RFC3339
}

// SMTPSettings son los parámetros de conexión guardados en settings.smtp.
type SMTPSettings struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Secure    bool   `json:"secure"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromEmail string `json:"fromEmail"`
	FromName  string `json:"fromName"`
}

// AppSettings es la vista tipada del singleton settings.
type AppSettings struct {
	AppName      string       `json:"appName,omitempty"`
	LogoURL      string       `json:"logoUrl,omitempty"`
	PrimaryColor string       `json:"primaryColor,omitempty"`
	CompanyName  string       `json:"companyName,omitempty"`
	ContactEmail string       `json:"contactEmail,omitempty"`
	DateFormat   string       `json:"dateFormat,omitempty"`
	Timezone     string       `json:"timezone,omitempty"`
	SMTP         SMTPSettings `json:"smtp"`
}

// ToItem convierte cualquier struct con tags JSON en un Item.
func ToItem(v any) (Item, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return DecodeItem(b)
}

// FromItem decodifica un Item en el struct apuntado por out.
func FromItem(it Item, out any) error {
	b, err := json.Marshal(it)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}
	return nil
}
