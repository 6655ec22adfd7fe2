// Package pg guarda el documento como una fila jsonb en Postgres.
package pg

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	store "github.com/dropDatabas3/mailadmin/internal/store"
	migrations "github.com/dropDatabas3/mailadmin/migrations/postgres"
)

func init() {
	store.RegisterAdapter(&pgAdapter{})
}

type pgAdapter struct{}

func (a *pgAdapter) Name() string { return "postgres" }

func (a *pgAdapter) Open(ctx context.Context, cfg store.AdapterConfig) (store.Backend, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres: dsn required")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if err := Migrate(ctx, pool, migrations.FS); err != nil {
		pool.Close()
		return nil, err
	}
	return New(pool, cfg.DocumentName), nil
}

// Backend lee/escribe la fila `name` de la tabla documents.
type Backend struct {
	pool *pgxpool.Pool
	name string
}

// New crea el backend sobre un pool existente (el schema ya debe existir).
func New(pool *pgxpool.Pool, name string) *Backend {
	if name == "" {
		name = "default"
	}
	return &Backend{pool: pool, name: name}
}

func (b *Backend) Name() string { return "postgres" }

func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	const query = `SELECT body FROM documents WHERE name = $1`
	var body []byte
	err := b.pool.QueryRow(ctx, query, b.name).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: read %q: %w", b.name, err)
	}
	return body, nil
}

func (b *Backend) Write(ctx context.Context, data []byte) error {
	const query = `
		INSERT INTO documents (name, body, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`
	if _, err := b.pool.Exec(ctx, query, b.name, string(data)); err != nil {
		return fmt.Errorf("postgres: write %q: %w", b.name, err)
	}
	return nil
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

// Pool expone el pool para métricas.
func (b *Backend) Pool() *pgxpool.Pool { return b.pool }

// Migrate aplica los *.up.sql de fsys en orden. Los scripts deben ser
// idempotentes (IF NOT EXISTS): no se guarda tabla de versiones.
func Migrate(ctx context.Context, pool *pgxpool.Pool, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("postgres: list migrations: %w", err)
	}
	sort.Strings(files)
	for _, f := range files {
		sql, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("postgres: read migration %s: %w", f, err)
		}
		if strings.TrimSpace(string(sql)) == "" {
			continue
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("postgres: apply migration %s: %w", f, err)
		}
	}
	return nil
}
