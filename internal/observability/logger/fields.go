package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field es un alias de zap.Field.
type Field = zap.Field

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }

// DurationMs crea un campo con la duración en milisegundos.
func DurationMs(v time.Duration) zap.Field {
	return zap.Int64("duration_ms", v.Milliseconds())
}

// ─── Store ───

// Resource es el nombre de la colección (notifications, email_logs, ...).
func Resource(v string) zap.Field { return zap.String("resource", v) }

// ItemID es el id de un item dentro de una colección.
func ItemID(v string) zap.Field { return zap.String("item_id", v) }

// Backend identifica el backend de persistencia (fs, postgres, s3).
func Backend(v string) zap.Field { return zap.String("backend", v) }

// ─── SMTP ───

func Host(v string) zap.Field     { return zap.String("host", v) }
func Port(v int) zap.Field        { return zap.Int("port", v) }
func Category(v string) zap.Field { return zap.String("category", v) }

// Email crea un campo para un destinatario (usar con cuidado en prod).
func Email(v string) zap.Field { return zap.String("email", v) }

// ─── Genéricos ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func String(key, v string) zap.Field    { return zap.String(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field   { return zap.Any(key, v) }
