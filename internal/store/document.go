package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Nombres conocidos del documento.
const (
	Settings      = "settings"
	Users         = "users"
	Clients       = "clients"
	Notifications = "notifications"
	EmailLogs     = "email_logs"
)

// Item es un objeto JSON arbitrario. El único campo estructural es "id".
type Item map[string]any

// ID retorna el id del item como string ("" si no tiene).
func (it Item) ID() string {
	switch v := it["id"].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Document es la unidad de persistencia: settings + colecciones nombradas.
// Claves top-level que no son objeto settings ni arrays se preservan en Extra
// para que save(load()) nunca pierda datos.
type Document struct {
	Settings    Item
	Collections map[string][]Item
	Extra       map[string]json.RawMessage
}

// DefaultDocument retorna la estructura que se crea en la primera lectura.
func DefaultDocument() *Document {
	return &Document{
		Settings: Item{
			"smtp": map[string]any{
				"host":      "",
				"port":      json.Number("465"),
				"secure":    false,
				"username":  "",
				"password":  "",
				"fromEmail": "",
				"fromName":  "",
			},
		},
		Collections: map[string][]Item{
			Users:         {},
			Clients:       {},
			Notifications: {},
			EmailLogs:     {},
		},
	}
}

// Collection retorna la colección y si existe.
func (d *Document) Collection(name string) ([]Item, bool) {
	if d == nil || d.Collections == nil {
		return nil, false
	}
	col, ok := d.Collections[name]
	return col, ok
}

// MarshalJSON serializa el documento como un único objeto.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Collections)+len(d.Extra)+1)
	for k, raw := range d.Extra {
		out[k] = raw
	}
	if d.Settings != nil {
		out[Settings] = d.Settings
	}
	for name, col := range d.Collections {
		if col == nil {
			col = []Item{}
		}
		out[name] = col
	}
	return json.Marshal(out)
}

// UnmarshalJSON separa settings, colecciones (arrays de objetos) y el resto.
func (d *Document) UnmarshalJSON(b []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return err
	}
	if top == nil {
		return fmt.Errorf("%w: top-level value is not an object", ErrInvalidDocument)
	}

	doc := Document{Collections: make(map[string][]Item)}
	for key, raw := range top {
		switch {
		case key == Settings && firstByte(raw) == '{':
			var s Item
			if err := decodeNumbers(raw, &s); err != nil {
				return fmt.Errorf("%w: settings: %v", ErrInvalidDocument, err)
			}
			doc.Settings = s
		case firstByte(raw) == '[':
			col := []Item{}
			if err := decodeNumbers(raw, &col); err != nil {
				return fmt.Errorf("%w: collection %q: %v", ErrInvalidDocument, key, err)
			}
			for i, it := range col {
				if it == nil {
					return fmt.Errorf("%w: collection %q: element %d is not an object", ErrInvalidDocument, key, i)
				}
			}
			doc.Collections[key] = col
		default:
			if doc.Extra == nil {
				doc.Extra = make(map[string]json.RawMessage)
			}
			doc.Extra[key] = append(json.RawMessage(nil), raw...)
		}
	}
	*d = doc
	return nil
}

// decodeDocument parsea bytes persistidos.
func decodeDocument(raw []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// encodeDocument serializa con indentación de 2 espacios.
func encodeDocument(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// decodeNumbers decodifica preservando números como json.Number.
func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

// DecodeItem decodifica un objeto JSON en un Item (números como json.Number).
func DecodeItem(raw []byte) (Item, error) {
	if firstByte(raw) != '{' {
		return nil, fmt.Errorf("item must be a JSON object")
	}
	var it Item
	if err := decodeNumbers(raw, &it); err != nil {
		return nil, err
	}
	return it, nil
}

func firstByte(raw []byte) byte {
	t := bytes.TrimLeft(raw, " \t\r\n")
	if len(t) == 0 {
		return 0
	}
	return t[0]
}
