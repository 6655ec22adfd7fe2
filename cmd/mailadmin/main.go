package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cl := &client{Out: out}
	var timeout time.Duration

	root := &cobra.Command{
		Use:           "mailadmin",
		Short:         "CLI admin para el backend de mail-admin",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cl.BaseURL == "" {
				return errors.New("falta la URL del API (flag --api-url o env MAILADMIN_API_URL)")
			}
			cl.HTTP = &http.Client{Timeout: timeout}
			return nil
		},
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&cl.BaseURL, "api-url", envOr("MAILADMIN_API_URL", "http://localhost:3001"), "URL base del API (env MAILADMIN_API_URL)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", envOr("MAILADMIN_OUT", "json"), "Formato de salida: json|text")
	root.PersistentFlags().StringVar(&cl.Lang, "lang", envOr("MAILADMIN_LANG", ""), "Accept-Language para mensajes del server (pt|es|en)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout por request")

	root.AddCommand(newResourcesCmd(cl), newSMTPCmd(cl))
	return root
}

// ─── resources ───

func newResourcesCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"res"},
		Short:   "CRUD sobre settings, users, clients, notifications, email_logs",
	}

	listCmd := &cobra.Command{
		Use:   "list <resource>",
		Short: "Lista una colección (o muestra settings)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.call(cmd.Context(), http.MethodGet, resourcePath(args[0]), nil)
			if err != nil {
				return err
			}
			cl.print(body)
			return nil
		},
	}

	var createData string
	createCmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "Crea un item (el server asigna el id)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseObject(createData)
			if err != nil {
				return err
			}
			body, err := cl.call(cmd.Context(), http.MethodPost, resourcePath(args[0]), payload)
			if err != nil {
				return err
			}
			cl.print(body)
			return nil
		},
	}
	createCmd.Flags().StringVarP(&createData, "data", "d", "{}", "Objeto JSON (o @archivo.json)")

	var updateData string
	updateCmd := &cobra.Command{
		Use:   "update <resource> [id]",
		Short: "Merge superficial sobre un item (sin id: settings)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseObject(updateData)
			if err != nil {
				return err
			}
			path := resourcePath(args[0], args[1:]...)
			body, err := cl.call(cmd.Context(), http.MethodPut, path, payload)
			if err != nil {
				return err
			}
			cl.print(body)
			return nil
		},
	}
	updateCmd.Flags().StringVarP(&updateData, "data", "d", "{}", "Objeto JSON (o @archivo.json)")

	deleteCmd := &cobra.Command{
		Use:   "delete <resource> <id>",
		Short: "Elimina un item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.call(cmd.Context(), http.MethodDelete, resourcePath(args[0], args[1]), nil)
			if err != nil {
				return err
			}
			cl.print(body)
			return nil
		},
	}

	cmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	return cmd
}

// parseObject acepta JSON inline o @ruta.
func parseObject(s string) (map[string]any, error) {
	raw := []byte(s)
	if len(s) > 1 && s[0] == '@' {
		b, err := os.ReadFile(s[1:])
		if err != nil {
			return nil, err
		}
		raw = b
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("--data debe ser un objeto JSON: %w", err)
	}
	if v == nil {
		v = map[string]any{}
	}
	return v, nil
}

// ─── smtp ───

func newSMTPCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smtp",
		Short: "Prueba de configuración SMTP",
	}

	var (
		host, username, password, fromEmail, fromName, to string
		port                                              int
	)
	testCmd := &cobra.Command{
		Use:   "test",
		Short: "Envía un email de prueba (sin --host usa settings.smtp)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				return errors.New("--to es requerido")
			}
			payload := map[string]any{"testEmail": to}
			if host != "" {
				payload["smtp"] = map[string]any{
					"host":      host,
					"port":      port,
					"username":  username,
					"password":  password,
					"fromEmail": fromEmail,
					"fromName":  fromName,
				}
			}

			status, body, err := cl.do(cmd.Context(), http.MethodPost, "/smtp/test", payload)
			if err != nil {
				return err
			}
			var res struct {
				Success   bool   `json:"success"`
				Error     string `json:"error"`
				Category  string `json:"category"`
				MessageID string `json:"messageId"`
			}
			if jsonErr := json.Unmarshal(body, &res); jsonErr != nil || status/100 == 4 {
				return &apiError{Status: status, Message: string(body)}
			}
			if cl.OutFormat == "json" {
				cl.print(body)
			} else if res.Success {
				fmt.Fprintf(cl.Out, "ok messageId=%s\n", res.MessageID)
			} else {
				fmt.Fprintf(cl.Out, "FALLO (%s)\n\n%s\n", res.Category, res.Error)
			}
			if !res.Success {
				return fmt.Errorf("smtp test failed (%s)", res.Category)
			}
			return nil
		},
	}
	f := testCmd.Flags()
	f.StringVar(&host, "host", "", "Servidor SMTP")
	f.IntVar(&port, "port", 465, "Puerto (465 = TLS implícito)")
	f.StringVar(&username, "username", "", "Usuario")
	f.StringVar(&password, "password", envOr("MAILADMIN_SMTP_PASSWORD", ""), "Password (env MAILADMIN_SMTP_PASSWORD)")
	f.StringVar(&fromEmail, "from-email", "", "Remitente")
	f.StringVar(&fromName, "from-name", "", "Nombre del remitente")
	f.StringVar(&to, "to", "", "Destinatario de la prueba")

	providersCmd := &cobra.Command{
		Use:   "providers",
		Short: "Lista presets de proveedores conocidos",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := cl.call(cmd.Context(), http.MethodGet, "/smtp/providers", nil)
			if err != nil {
				return err
			}
			cl.print(body)
			return nil
		},
	}

	cmd.AddCommand(testCmd, providersCmd)
	return cmd
}
