package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	xrate "golang.org/x/time/rate"
)

// MemoryLimiter es un token bucket por key (golang.org/x/time/rate):
// Max tokens que se recargan a lo largo de Window. Las keys sin actividad
// se descartan después de 2*Window.
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	mu      sync.Mutex
	buckets *gocache.Cache
	now     func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &MemoryLimiter{
		Max:     int64(max),
		Window:  window,
		buckets: gocache.New(2*window, 4*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) bucket(key string) *xrate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.buckets.Get(key); ok {
		lim := v.(*xrate.Limiter)
		l.buckets.SetDefault(key, lim) // renueva expiración
		return lim
	}
	every := l.Window / time.Duration(l.Max)
	lim := xrate.NewLimiter(xrate.Every(every), int(l.Max))
	l.buckets.SetDefault(key, lim)
	return lim
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	lim := l.bucket(key)
	now := l.now()

	r := lim.ReserveN(now, 1)
	if !r.OK() {
		return Result{Allowed: false, RetryAfter: l.Window, WindowTTL: l.Window}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Result{
			Allowed:     false,
			Remaining:   0,
			RetryAfter:  delay,
			WindowTTL:   delay,
			CurrentHits: l.Max,
		}, nil
	}

	remaining := int64(lim.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:     true,
		Remaining:   remaining,
		WindowTTL:   l.Window,
		CurrentHits: l.Max - remaining,
	}, nil
}
