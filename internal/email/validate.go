package email

import (
	"errors"
	"fmt"
	"strings"

	store "github.com/dropDatabas3/mailadmin/internal/store"
)

// ErrIncompleteSMTP: falta algún parámetro obligatorio para la prueba.
var ErrIncompleteSMTP = errors.New("email: incomplete SMTP test data")

// Validate exige host, port, username, password, fromEmail y destinatario.
// No toca la red.
func Validate(s store.SMTPSettings, to string) error {
	var missing []string
	if strings.TrimSpace(s.Host) == "" {
		missing = append(missing, "host")
	}
	if s.Port <= 0 || s.Port > 65535 {
		missing = append(missing, "port")
	}
	if s.Username == "" {
		missing = append(missing, "username")
	}
	if s.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(s.FromEmail) == "" {
		missing = append(missing, "fromEmail")
	}
	if strings.TrimSpace(to) == "" {
		missing = append(missing, "testEmail")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteSMTP, strings.Join(missing, ", "))
	}
	return nil
}
