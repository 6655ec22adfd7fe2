// Package email implementa la prueba de configuración SMTP.
//
// Arquitectura:
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                 HTTP Handler (POST /smtp/test)                  │
//	└───────────────────────────┬─────────────────────────────────────┘
//	                            │
//	                            ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                          Service                                │
//	│  email.NewService(cfg)                                          │
//	│    - Test(ctx, req)  → Validate → Dial → Send → Classify        │
//	│    - Providers()                                                │
//	└──────────────┬───────────────────────────────┬──────────────────┘
//	               │                               │
//	               ▼                               ▼
//	┌──────────────────────────────┐ ┌─────────────────────────────────┐
//	│   Transport (go-mail)        │ │   LogStore (store.Store)        │
//	│   Dial/Send/Close            │ │   Append(email_logs, entry)     │
//	└──────────────────────────────┘ └─────────────────────────────────┘
//
// Cada llamada a Test agrega exactamente una entrada a email_logs, sea
// éxito o error.
package email
