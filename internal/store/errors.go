package store

import "errors"

var (
	// ErrNotExist lo retorna un Backend cuando el documento todavía no fue creado.
	ErrNotExist = errors.New("store: document does not exist")

	// ErrResourceNotFound: el nombre no corresponde a ninguna colección del documento.
	ErrResourceNotFound = errors.New("store: resource not found")

	// ErrItemNotFound: la colección existe pero no tiene un item con ese id.
	ErrItemNotFound = errors.New("store: item not found")

	// ErrNotCollection: operación de colección sobre el singleton settings.
	ErrNotCollection = errors.New("store: resource is not a collection")

	// ErrInvalidDocument: el contenido persistido no es un documento válido.
	ErrInvalidDocument = errors.New("store: invalid document")
)

// IsNotFound indica si err es ErrResourceNotFound o ErrItemNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound) || errors.Is(err, ErrItemNotFound)
}
