package email

// Provider es un preset de conexión para un proveedor conocido.
type Provider struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Secure bool   `json:"secure"`
}

var providers = map[string]Provider{
	"softec":  {Host: "mail.softecangola.net", Port: 465, Secure: true},
	"gmail":   {Host: "smtp.gmail.com", Port: 465, Secure: true},
	"outlook": {Host: "smtp-mail.outlook.com", Port: 587, Secure: false},
}

// Providers retorna una copia de los presets.
func Providers() map[string]Provider {
	out := make(map[string]Provider, len(providers))
	for k, v := range providers {
		out[k] = v
	}
	return out
}
