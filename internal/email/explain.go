package email

import (
	"embed"
	"fmt"
	"io/fs"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// DefaultLang es el idioma de los mensajes cuando el cliente no pide otro.
const DefaultLang = "pt"

// Translator resuelve los textos del email de prueba y las explicaciones de
// error según Accept-Language.
type Translator struct {
	bundle   *i18n.Bundle
	matcher  language.Matcher
	fallback string
}

// NewTranslator carga los locales embebidos. fallback vacío usa DefaultLang.
func NewTranslator(fallback string) (*Translator, error) {
	if fallback == "" {
		fallback = DefaultLang
	}
	if _, err := language.Parse(fallback); err != nil {
		return nil, fmt.Errorf("email: invalid language %q: %w", fallback, err)
	}

	bundle := i18n.NewBundle(language.Portuguese)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	paths, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if _, err := bundle.LoadMessageFileFS(localeFS, p); err != nil {
			return nil, fmt.Errorf("email: load %s: %w", p, err)
		}
	}

	return &Translator{
		bundle:   bundle,
		matcher:  language.NewMatcher(bundle.LanguageTags()),
		fallback: fallback,
	}, nil
}

var (
	defaultTranslatorOnce sync.Once
	defaultTranslator     *Translator
)

func mustDefaultTranslator() *Translator {
	defaultTranslatorOnce.Do(func() {
		t, err := NewTranslator(DefaultLang)
		if err != nil {
			panic(err)
		}
		defaultTranslator = t
	})
	return defaultTranslator
}

// Lang retorna el idioma soportado que mejor coincide con accept.
func (t *Translator) Lang(accept string) string {
	tag, _ := language.MatchStrings(t.matcher, accept, t.fallback)
	base, _ := tag.Base()
	return base.String()
}

// Text retorna el mensaje id traducido (o id si no existe).
func (t *Translator) Text(accept, id string, data map[string]any) string {
	loc := i18n.NewLocalizer(t.bundle, accept, t.fallback)
	s, err := loc.Localize(&i18n.LocalizeConfig{MessageID: id, TemplateData: data})
	if err != nil && s == "" {
		return id
	}
	return s
}

// Explain arma la explicación de varias líneas para una categoría:
// título, "Possíveis causas:" y una línea por causa. CategoryOther incluye
// el texto del error original.
func (t *Translator) Explain(c Category, err error, accept string) string {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return t.Text(accept, messageID(c), map[string]any{"Message": msg})
}

// Explain usa los locales embebidos con DefaultLang como fallback.
func Explain(c Category, err error, accept string) string {
	return mustDefaultTranslator().Explain(c, err, accept)
}

func messageID(c Category) string {
	switch c {
	case CategoryRefused:
		return "ExplainRefused"
	case CategoryTimeout:
		return "ExplainTimeout"
	case CategorySocket:
		return "ExplainSocket"
	case CategoryAuth:
		return "ExplainAuth"
	}
	return "ExplainOther"
}
