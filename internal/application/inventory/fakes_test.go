package inventory_test

import (
	"context"
	"sort"
	"sync"

	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. Sin transacciones reales: los tests de este paquete solo
// ejercen caminos donde el caso de uso falla antes de escribir o escribe todo.
// ──────────────────────────────────────────────────────────────────────────────

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*entity.Product
}

func newMemProductRepo(products ...*entity.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[string]*entity.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *memProductRepo) Create(p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) GetByID(id string) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memProductRepo) GetForUpdate(id string) (*entity.Product, error) {
	return r.GetByID(id)
}

func (r *memProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memProductRepo) Update(p *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *memProductRepo) UpdateStock(id string, newStock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		p.CurrentStock = newStock
	}
	return nil
}

func (r *memProductRepo) stockOf(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].CurrentStock
}

type memUserRepo struct {
	users map[string]*entity.User
}

func newMemUserRepo(users ...*entity.User) *memUserRepo {
	r := &memUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (r *memUserRepo) FindByEmail(email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type memMovementRepo struct {
	mu        sync.Mutex
	seq       int64
	movements []*entity.InventoryMovement
}

func newMemMovementRepo() *memMovementRepo { return &memMovementRepo{} }

func (r *memMovementRepo) Create(m *entity.InventoryMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.Seq = r.seq
	cp := *m
	r.movements = append(r.movements, &cp)
	return nil
}

func (r *memMovementRepo) GetByID(id string) (*repository.MovementView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.ID == id {
			return &repository.MovementView{InventoryMovement: *m}, nil
		}
	}
	return nil, nil
}

func (r *memMovementRepo) Search(filter repository.MovementFilter, limit, offset int) ([]*repository.MovementView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*entity.InventoryMovement
	for _, m := range r.movements {
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.MovementType != "" && m.MovementType != filter.MovementType {
			continue
		}
		if filter.UserID != "" && m.UserID != filter.UserID {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Seq > matched[j].Seq })
	if offset > len(matched) {
		offset = len(matched)
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	out := make([]*repository.MovementView, 0, len(matched))
	for _, m := range matched {
		out = append(out, &repository.MovementView{InventoryMovement: *m})
	}
	return out, nil
}

func (r *memMovementRepo) LastSnapshot(productID string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	best := -1
	newStock := 0
	for _, m := range r.movements {
		if m.ProductID == productID && int(m.Seq) > best {
			best = int(m.Seq)
			newStock = m.NewStock
		}
	}
	return newStock, best >= 0, nil
}

func (r *memMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

func (r *memMovementRepo) all() []*entity.InventoryMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.InventoryMovement, len(r.movements))
	copy(out, r.movements)
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// fakeTxRunner ejecuta fn con los repos en memoria, sin transacción real.
type fakeTxRunner struct {
	movRepo     *memMovementRepo
	productRepo *memProductRepo
}

func (tr *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return fn(tr.movRepo, tr.productRepo)
}
