package email

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
	store "github.com/dropDatabas3/mailadmin/internal/store"
	"github.com/dropDatabas3/mailadmin/internal/util"
	"go.uber.org/zap"
)

// ErrLogFailed: la prueba terminó pero no se pudo registrar en email_logs.
var ErrLogFailed = errors.New("email: could not record email log")

// sentAtLayout replica toISOString (ms, UTC con Z).
const sentAtLayout = "2006-01-02T15:04:05.000Z07:00"

// ServiceConfig contiene la configuración del servicio.
type ServiceConfig struct {
	Store      LogStore    // requerido
	Transport  Transport   // default: MailTransport (go-mail)
	Translator *Translator // default: NewTranslator(Lang)

	Lang            string        // idioma por defecto de mensajes
	Timeout         time.Duration // default 5s
	DefaultFromName string

	Now func() time.Time
}

// Service ejecuta pruebas SMTP y las registra en email_logs.
type Service struct {
	store           LogStore
	transport       Transport
	tr              *Translator
	timeout         time.Duration
	defaultFromName string
	now             func() time.Time
}

// NewService crea el servicio.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("email: store is required")
	}
	if cfg.Transport == nil {
		cfg.Transport = NewMailTransport()
	}
	if cfg.Translator == nil {
		tr, err := NewTranslator(cfg.Lang)
		if err != nil {
			return nil, err
		}
		cfg.Translator = tr
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		store:           cfg.Store,
		transport:       cfg.Transport,
		tr:              cfg.Translator,
		timeout:         cfg.Timeout,
		defaultFromName: cfg.DefaultFromName,
		now:             cfg.Now,
	}, nil
}

// Providers retorna los presets conocidos.
func (s *Service) Providers() map[string]Provider { return Providers() }

// Translator retorna el translator usado por el servicio.
func (s *Service) Translator() *Translator { return s.tr }

// Test valida, conecta, envía un único mensaje y registra exactamente una
// entrada en email_logs. Un fallo SMTP no es error de la llamada: viaja en
// Result. Solo se retorna error si no se pudo registrar el log.
func (s *Service) Test(ctx context.Context, req Request) (Result, error) {
	start := s.now()
	log := logger.From(ctx).With(
		logger.Op("TestSMTP"),
		logger.Email(util.MaskEmail(req.TestEmail)),
	)

	subject := s.tr.Text(req.Lang, "SubjectTest", nil)

	var res Result
	messageID, err := s.run(ctx, req, log)
	res.Duration = s.now().Sub(start)
	if err != nil {
		res.Category = Classify(err)
		if errors.Is(err, ErrIncompleteSMTP) {
			res.Category = CategoryOther
			err = errors.New(s.tr.Text(req.Lang, "IncompleteData", nil))
		}
		res.Error = s.tr.Explain(res.Category, err, req.Lang)
		log.Error("smtp test failed",
			logger.Err(err),
			logger.Category(string(res.Category)),
			logger.Bool("temporary", res.Category.Temporary()),
			logger.DurationMs(res.Duration),
		)
	} else {
		res.Success = true
		res.MessageID = messageID
		log.Info("smtp test succeeded", logger.DurationMs(res.Duration))
	}

	entry := store.EmailLog{
		TemplateID: TemplateID,
		To:         req.TestEmail,
		Subject:    subject,
		Status:     store.StatusSuccess,
		MessageID:  res.MessageID,
		Duration:   res.Duration.Milliseconds(),
		SentAt:     s.now().UTC().Format(sentAtLayout),
	}
	if !res.Success {
		entry.Status = store.StatusError
		entry.Error = res.Error
	}

	item, err := store.ToItem(entry)
	if err == nil {
		item, err = s.store.Append(ctx, store.EmailLogs, item)
	}
	if err != nil {
		log.Error("error recording email log", logger.Err(err))
		return res, fmt.Errorf("%w: %w", ErrLogFailed, err)
	}
	res.LogID = item.ID()

	observeTest(res)
	return res, nil
}

// run resuelve la configuración y hace el round-trip SMTP. Retorna el
// Message-ID enviado.
func (s *Service) run(ctx context.Context, req Request, log *zap.Logger) (string, error) {
	settings, err := s.resolveSettings(ctx, req)
	if err != nil {
		return "", err
	}
	if err := Validate(settings, req.TestEmail); err != nil {
		return "", err
	}
	if settings.FromName == "" {
		settings.FromName = s.defaultFromName
	}

	dc := DialConfig{
		Host:     settings.Host,
		Port:     settings.Port,
		Username: settings.Username,
		Password: settings.Password,
		SSL:      settings.Port == ImplicitTLSPort,
		Timeout:  s.timeout,
	}
	log.Info("starting smtp test",
		logger.Host(dc.Host),
		logger.Port(dc.Port),
		logger.Bool("secure", dc.SSL),
		logger.String("username", dc.Username),
	)

	content, err := s.tr.TestEmail(req.Lang, dc, s.now().Format(time.RFC1123))
	if err != nil {
		return "", err
	}

	conn, err := s.transport.Dial(ctx, dc)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Debug("smtp close", logger.Err(cerr))
		}
	}()
	log.Debug("smtp connection verified")

	messageID := newMessageID(settings.FromEmail)
	msg := newMessage(settings.FromEmail, settings.FromName, req.TestEmail, messageID, content)
	if err := conn.Send(settings.FromEmail, []string{req.TestEmail}, msg); err != nil {
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return messageID, nil
}

func (s *Service) resolveSettings(ctx context.Context, req Request) (store.SMTPSettings, error) {
	if req.SMTP != nil {
		return *req.SMTP, nil
	}
	settings, err := s.store.SMTPSettings(ctx)
	if err != nil {
		return store.SMTPSettings{}, fmt.Errorf("load stored smtp settings: %w", err)
	}
	return settings, nil
}
