package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

type client struct {
	BaseURL   string
	Lang      string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
	Out       io.Writer
}

// apiError es un status no-2xx con el body de error del server.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status=%d code=%s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("status=%d: %s", e.Status, e.Message)
}

func (c *client) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Lang != "" {
		req.Header.Set("Accept-Language", c.Lang)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, b, nil
}

// call hace el request y convierte los no-2xx en *apiError.
func (c *client) call(ctx context.Context, method, path string, payload any) ([]byte, error) {
	status, body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	if status/100 != 2 {
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(body, &e)
		msg := e.Message
		if msg == "" {
			msg = e.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return body, &apiError{Status: status, Code: e.Code, Message: msg}
	}
	return body, nil
}

func (c *client) print(body []byte) {
	if len(body) == 0 {
		fmt.Fprintln(c.Out, "ok")
		return
	}
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Fprintln(c.Out, string(p))
			return
		}
	}
	fmt.Fprintln(c.Out, strings.TrimSpace(string(body)))
}

func resourcePath(resource string, id ...string) string {
	p := "/" + url.PathEscape(resource)
	for _, s := range id {
		p += "/" + url.PathEscape(s)
	}
	return p
}
