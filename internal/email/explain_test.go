package email

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExplain_DefaultPortuguese(t *testing.T) {
	tr, err := NewTranslator("")
	require.NoError(t, err)

	got := tr.Explain(CategoryRefused, errors.New("ignored"), "")
	require.Equal(t, "Conexão recusada pelo servidor\n"+
		"Possíveis causas:\n"+
		"- Servidor SMTP indisponível\n"+
		"- Porta bloqueada\n"+
		"- Firewall bloqueando a conexão", got)
}

func TestExplain_AllCategoriesMultiLine(t *testing.T) {
	tr, err := NewTranslator("pt")
	require.NoError(t, err)

	for _, c := range []Category{CategoryRefused, CategoryTimeout, CategorySocket, CategoryAuth, CategoryOther} {
		lines := strings.Split(tr.Explain(c, errors.New("boom"), ""), "\n")
		require.GreaterOrEqual(t, len(lines), 4, c)
		require.Equal(t, "Possíveis causas:", lines[1], c)
		for _, l := range lines[2:] {
			require.True(t, strings.HasPrefix(l, "- "), "%s: %q", c, l)
		}
	}
}

func TestExplain_OtherIncludesMessage(t *testing.T) {
	got := Explain(CategoryOther, errors.New("dial tcp: lookup smtp.invalid: no such host"), "")
	require.True(t, strings.HasPrefix(got, "Erro: dial tcp: lookup smtp.invalid: no such host\n"), got)
}

func TestExplain_AcceptLanguage(t *testing.T) {
	tr, err := NewTranslator("pt")
	require.NoError(t, err)

	es := tr.Explain(CategoryAuth, nil, "es-AR,es;q=0.9,en;q=0.8")
	require.True(t, strings.HasPrefix(es, "Falló la autenticación\nPosibles causas:"), es)

	en := tr.Explain(CategoryTimeout, nil, "en-US")
	require.True(t, strings.HasPrefix(en, "Connection timed out\n"), en)

	// idioma no soportado: fallback
	fr := tr.Explain(CategoryAuth, nil, "fr-FR")
	require.True(t, strings.HasPrefix(fr, "Falha na autenticação\n"), fr)
}

func TestTranslator_Lang(t *testing.T) {
	tr, err := NewTranslator("pt")
	require.NoError(t, err)

	require.Equal(t, "es", tr.Lang("es-MX"))
	require.Equal(t, "en", tr.Lang("en-GB,en;q=0.9"))
	require.Equal(t, "pt", tr.Lang(""))
}

func TestNewTranslator_InvalidFallback(t *testing.T) {
	_, err := NewTranslator("!!")
	require.Error(t, err)
}

func TestTestEmail_RendersSettings(t *testing.T) {
	tr, err := NewTranslator("pt")
	require.NoError(t, err)

	c, err := tr.TestEmail("", DialConfig{Host: "smtp.<evil>.com", Port: 465, SSL: true}, "now")
	require.NoError(t, err)
	require.Equal(t, "Teste de Configuração SMTP", c.Subject)
	require.Contains(t, c.HTMLBody, "<li>Porta: 465</li>")
	require.Contains(t, c.HTMLBody, "<li>SSL/TLS: Sim</li>")
	require.Contains(t, c.HTMLBody, "smtp.&lt;evil&gt;.com")
	require.Contains(t, c.TextBody, "- Servidor: smtp.<evil>.com")
}

func TestNewMessageID(t *testing.T) {
	id := newMessageID("ops@example.com")
	require.True(t, strings.HasPrefix(id, "<"))
	require.True(t, strings.HasSuffix(id, "@example.com>"))
	require.NotEqual(t, id, newMessageID("ops@example.com"))

	require.True(t, strings.HasSuffix(newMessageID("broken"), "@localhost>"))
}
