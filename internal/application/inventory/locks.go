package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stockia/stockia-api/internal/domain"
)

// ProductLocks serializa las operaciones que mutan stock por producto.
// Dos operaciones sobre el mismo producto nunca intercalan su lectura de
// stock con su escritura; operaciones sobre productos distintos avanzan en
// paralelo. La espera por el bloqueo está acotada: al vencer el timeout la
// operación falla con ErrLockTimeout (reintentable por el llamador).
//
// Las entradas de la tabla se cuentan por referencia y se eliminan al quedar
// sin usuarios, así la tabla no crece sin límite con el catálogo.
type ProductLocks struct {
	timeout time.Duration
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{} // capacidad 1: ocupado si hay un token dentro
	refs int
}

// NewProductLocks construye la tabla de bloqueos con la espera máxima dada.
func NewProductLocks(timeout time.Duration) *ProductLocks {
	return &ProductLocks{
		timeout: timeout,
		entries: make(map[string]*lockEntry),
	}
}

// WithProductLock ejecuta fn dentro de la sección crítica del producto.
// El bloqueo se libera en todo camino de salida: éxito, error de validación
// o pánico dentro de fn.
func (pl *ProductLocks) WithProductLock(ctx context.Context, productID string, fn func() error) error {
	release, err := pl.acquire(ctx, productID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// WithProductLocks adquiere los bloqueos de todos los productos en orden
// ascendente de ID (orden global fijo, evita deadlocks entre órdenes que
// comparten productos) y ejecuta fn. Si alguna adquisición falla, libera lo
// ya adquirido y retorna el error.
func (pl *ProductLocks) WithProductLocks(ctx context.Context, productIDs []string, fn func() error) error {
	ids := uniqueSorted(productIDs)
	releases := make([]func(), 0, len(ids))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, id := range ids {
		release, err := pl.acquire(ctx, id)
		if err != nil {
			releaseAll()
			return err
		}
		releases = append(releases, release)
	}
	defer releaseAll()
	return fn()
}

// acquire toma la sección crítica del producto o falla con ErrLockTimeout.
func (pl *ProductLocks) acquire(ctx context.Context, productID string) (release func(), err error) {
	pl.mu.Lock()
	e, ok := pl.entries[productID]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		pl.entries[productID] = e
	}
	e.refs++
	pl.mu.Unlock()

	timer := time.NewTimer(pl.timeout)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.sem
				pl.dropRef(productID, e)
			})
		}, nil
	case <-timer.C:
		pl.dropRef(productID, e)
		return nil, domain.ErrLockTimeout
	case <-ctx.Done():
		pl.dropRef(productID, e)
		return nil, ctx.Err()
	}
}

func (pl *ProductLocks) dropRef(productID string, e *lockEntry) {
	pl.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(pl.entries, productID)
	}
	pl.mu.Unlock()
}

func uniqueSorted(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
