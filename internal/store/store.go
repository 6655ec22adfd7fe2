package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dropDatabas3/mailadmin/internal/observability/logger"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const cacheKey = "document"

// Options configura el Store.
type Options struct {
	// CacheTTL: tiempo que se reutiliza el último documento leído/escrito.
	// 0 deshabilita el cache (cada operación va al backend).
	CacheTTL time.Duration

	// StrictReads: si es true, errores de lectura/parseo distintos de
	// ErrNotExist se propagan en lugar de enmascararse con el documento default.
	StrictReads bool

	// Now permite fijar el reloj en tests. Default: time.Now.
	Now func() time.Time
}

// Store implementa load/save y el CRUD genérico sobre colecciones nombradas.
// Cada mutación ejecuta load→mutate→save bajo un único writer por proceso;
// entre procesos sigue siendo last-write-wins.
type Store struct {
	backend Backend
	opts    Options

	mu    sync.RWMutex
	cache *gocache.Cache
	sf    singleflight.Group
}

// New crea un Store sobre backend.
func New(backend Backend, opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{backend: backend, opts: opts}
	if opts.CacheTTL > 0 {
		s.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return s
}

// Backend retorna el backend subyacente.
func (s *Store) Backend() Backend { return s.backend }

// Close cierra el backend.
func (s *Store) Close() error { return s.backend.Close() }

// ─── load / save ───

// Load retorna el documento actual. Si no existe lo crea con la estructura
// default. Otros errores de lectura se loguean y se enmascaran con el default
// (salvo StrictReads).
func (s *Store) Load(ctx context.Context) (*Document, error) {
	s.mu.RLock()
	doc, err := s.loadExisting(ctx)
	s.mu.RUnlock()
	if !errors.Is(err, ErrNotExist) {
		return doc, err
	}

	// crear el default es una escritura: lock exclusivo y se vuelve a leer
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save sobrescribe el documento completo.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

// load requiere s.mu en modo escritura: si el documento no existe lo crea.
func (s *Store) load(ctx context.Context) (*Document, error) {
	doc, err := s.loadExisting(ctx)
	if !errors.Is(err, ErrNotExist) {
		return doc, err
	}
	doc = DefaultDocument()
	if err := s.save(ctx, doc); err != nil {
		return nil, fmt.Errorf("create default document: %w", err)
	}
	logger.From(ctx).Info("default document created",
		logger.Component("store"), logger.Backend(s.backend.Name()))
	return doc, nil
}

// loadExisting lee y decodifica sin escribir. Devuelve ErrNotExist tal cual.
func (s *Store) loadExisting(ctx context.Context) (*Document, error) {
	log := logger.From(ctx).With(logger.Component("store"), logger.Backend(s.backend.Name()))

	raw, err := s.read(ctx)
	if errors.Is(err, ErrNotExist) {
		return nil, err
	}
	if err != nil {
		if s.opts.StrictReads {
			return nil, fmt.Errorf("read document: %w", err)
		}
		log.Error("error reading document, using defaults", logger.Err(err))
		return DefaultDocument(), nil
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		if s.opts.StrictReads {
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}
		log.Error("error parsing document, using defaults", logger.Err(err))
		return DefaultDocument(), nil
	}
	if doc.Collections == nil {
		doc.Collections = make(map[string][]Item)
	}
	return doc, nil
}

// read obtiene los bytes del documento: cache si está vigente, si no backend.
// Lecturas concurrentes con cache miss comparten una sola llamada al backend.
func (s *Store) read(ctx context.Context) ([]byte, error) {
	if s.cache != nil {
		if v, ok := s.cache.Get(cacheKey); ok {
			return v.([]byte), nil
		}
	}
	v, err, _ := s.sf.Do(cacheKey, func() (any, error) {
		raw, err := s.backend.Read(ctx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			s.cache.SetDefault(cacheKey, raw)
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (s *Store) save(ctx context.Context, doc *Document) error {
	raw, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.backend.Write(ctx, raw); err != nil {
		if s.cache != nil {
			s.cache.Delete(cacheKey)
		}
		logger.From(ctx).Error("error writing document",
			logger.Component("store"), logger.Backend(s.backend.Name()), logger.Err(err))
		return fmt.Errorf("write document: %w", err)
	}
	if s.cache != nil {
		s.cache.SetDefault(cacheKey, raw)
	}
	return nil
}

// ─── Operaciones por recurso ───

// Get retorna la colección nombrada ([]Item, nunca nil) o el objeto settings (Item).
func (s *Store) Get(ctx context.Context, name string) (any, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	if name == Settings && doc.Settings != nil {
		return doc.Settings, nil
	}
	col, ok := doc.Collection(name)
	if !ok {
		return nil, ErrResourceNotFound
	}
	if col == nil {
		col = []Item{}
	}
	return col, nil
}

// List es Get restringido a colecciones.
func (s *Store) List(ctx context.Context, name string) ([]Item, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	col, ok := doc.Collection(name)
	if !ok {
		if name == Settings && doc.Settings != nil {
			return nil, ErrNotCollection
		}
		return nil, ErrResourceNotFound
	}
	if col == nil {
		col = []Item{}
	}
	return col, nil
}

// Create asigna un id nuevo (timestamp en ms, único dentro de la colección),
// agrega el item al final y persiste. Un "id" enviado por el cliente se ignora.
func (s *Store) Create(ctx context.Context, name string, partial Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	col, err := collectionOf(doc, name)
	if err != nil {
		return nil, err
	}

	item := make(Item, len(partial)+1)
	for k, v := range partial {
		item[k] = v
	}
	item["id"] = s.nextID(col)

	doc.Collections[name] = append(col, item)
	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return item, nil
}

// Update hace merge superficial de partial sobre el item con ese id.
// El id es inmutable. Si el id no existe no se escribe nada.
func (s *Store) Update(ctx context.Context, name, id string, partial Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	col, err := collectionOf(doc, name)
	if err != nil {
		return nil, err
	}
	idx := indexOf(col, id)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	merged := make(Item, len(col[idx])+len(partial))
	for k, v := range col[idx] {
		merged[k] = v
	}
	for k, v := range partial {
		if k == "id" {
			continue
		}
		merged[k] = v
	}
	col[idx] = merged

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return merged, nil
}

// Remove elimina el item con ese id y persiste la colección reducida.
func (s *Store) Remove(ctx context.Context, name, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	col, err := collectionOf(doc, name)
	if err != nil {
		return err
	}
	idx := indexOf(col, id)
	if idx < 0 {
		return ErrItemNotFound
	}

	out := make([]Item, 0, len(col)-1)
	out = append(out, col[:idx]...)
	out = append(out, col[idx+1:]...)
	doc.Collections[name] = out

	return s.save(ctx, doc)
}

// Append agrega item a la colección con id asignado por el store.
// Es el camino que usa el servicio SMTP para registrar email_logs.
func (s *Store) Append(ctx context.Context, name string, item Item) (Item, error) {
	return s.Create(ctx, name, item)
}

// UpdateSettings hace merge superficial sobre el singleton settings.
func (s *Store) UpdateSettings(ctx context.Context, partial Item) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	merged := make(Item, len(doc.Settings)+len(partial))
	for k, v := range doc.Settings {
		merged[k] = v
	}
	for k, v := range partial {
		merged[k] = v
	}
	doc.Settings = merged

	if err := s.save(ctx, doc); err != nil {
		return nil, err
	}
	return merged, nil
}

// SMTPSettings decodifica settings.smtp.
func (s *Store) SMTPSettings(ctx context.Context) (SMTPSettings, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return SMTPSettings{}, err
	}
	var app AppSettings
	if err := FromItem(doc.Settings, &app); err != nil {
		return SMTPSettings{}, err
	}
	return app.SMTP, nil
}

// ─── helpers ───

func collectionOf(doc *Document, name string) ([]Item, error) {
	col, ok := doc.Collection(name)
	if ok {
		return col, nil
	}
	if name == Settings && doc.Settings != nil {
		return nil, ErrNotCollection
	}
	return nil, ErrResourceNotFound
}

func indexOf(col []Item, id string) int {
	for i, it := range col {
		if it.ID() == id {
			return i
		}
	}
	return -1
}

// nextID usa el timestamp actual en ms; si choca con un id existente avanza
// hasta encontrar uno libre.
func (s *Store) nextID(col []Item) string {
	used := make(map[string]struct{}, len(col))
	for _, it := range col {
		used[it.ID()] = struct{}{}
	}
	ts := s.opts.Now().UnixMilli()
	for {
		id := strconv.FormatInt(ts, 10)
		if _, taken := used[id]; !taken {
			return id
		}
		ts++
	}
}
