package email

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/textproto"
	"os"
	"regexp"
	"strings"
	"syscall"
)

// Category es la clasificación de un error de transporte.
type Category string

const (
	CategoryRefused Category = "refused"
	CategoryTimeout Category = "timeout"
	CategorySocket  Category = "socket" // TLS/SSL y errores de socket
	CategoryAuth    Category = "auth"
	CategoryOther   Category = "other"
)

// Temporary indica si reintentar más tarde podría funcionar.
func (c Category) Temporary() bool {
	return c == CategoryRefused || c == CategoryTimeout
}

// Classify analiza un error SMTP. Primero por tipo y después por texto,
// porque go-mail no siempre preserva la cadena de errores.
func Classify(err error) Category {
	if err == nil {
		return ""
	}
	if c, ok := classifyTyped(err); ok {
		return c
	}
	return classifyText(strings.ToLower(rootCause(err).Error()))
}

// rootCause baja por la cadena de Unwrap. El texto de los wrappers incluye
// host y puerto, que no deben influir en las heurísticas.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// smtpAuthCode matchea un reply code de auth, no cualquier 535 del texto.
var smtpAuthCode = regexp.MustCompile(`(?:^|[\s:])5(?:30|34|35|38)[\s-]`)

func classifyTyped(err error) (Category, bool) {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return CategoryRefused, true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return CategoryTimeout, true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return CategoryTimeout, true
	}

	// DNS: el host no resuelve, no es un problema de TLS ni de auth
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryOther, true
	}

	var rhe tls.RecordHeaderError
	if errors.As(err, &rhe) {
		return CategorySocket, true
	}
	var alert tls.AlertError
	if errors.As(err, &alert) {
		return CategorySocket, true
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return CategorySocket, true
	}
	var unknownCA x509.UnknownAuthorityError
	if errors.As(err, &unknownCA) {
		return CategorySocket, true
	}
	var hostErr x509.HostnameError
	if errors.As(err, &hostErr) {
		return CategorySocket, true
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return CategorySocket, true
	}

	var tpe *textproto.Error
	if errors.As(err, &tpe) {
		switch tpe.Code {
		case 530, 534, 535, 538:
			return CategoryAuth, true
		}
	}
	return "", false
}

func classifyText(s string) Category {
	switch {
	case strings.Contains(s, "connection refused") ||
		strings.Contains(s, "actively refused"): // windows
		return CategoryRefused

	case strings.Contains(s, "timeout") || strings.Contains(s, "timed out") ||
		strings.Contains(s, "deadline exceeded"):
		return CategoryTimeout

	case strings.Contains(s, "x509:") ||
		strings.Contains(s, "tls:") ||
		strings.Contains(s, "tls") && (strings.Contains(s, "handshake") || strings.Contains(s, "certificate")) ||
		strings.Contains(s, "connection reset") ||
		strings.Contains(s, "broken pipe") ||
		strings.HasSuffix(s, "eof"):
		return CategorySocket

	case strings.Contains(s, "5.7.8") || smtpAuthCode.MatchString(s) ||
		strings.Contains(s, "username and password not accepted") ||
		strings.Contains(s, "authentication failed") ||
		strings.Contains(s, "doesn't support auth") ||
		strings.Contains(s, "auth") && strings.Contains(s, "failed"):
		return CategoryAuth
	}
	return CategoryOther
}
