package order_test

import (
	"context"
	"sort"
	"sync"

	"github.com/stockia/stockia-api/internal/application/order"
	"github.com/stockia/stockia-api/internal/domain"
	"github.com/stockia/stockia-api/internal/domain/entity"
	"github.com/stockia/stockia-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. fakeTxRunner implementa los runners de inventario y de
// órdenes sobre los mismos repos, con rollback por snapshot: si fn falla, el
// estado de los tres repos vuelve al del inicio, como en una transacción real.
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

func (r *memUserRepo) Create(u *entity.User) error { r.users[u.ID] = u; return nil }

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

type memClientRepo struct {
	clients map[string]*entity.Client
}

func newMemClientRepo(clients ...*entity.Client) *memClientRepo {
	r := &memClientRepo{clients: make(map[string]*entity.Client)}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *memClientRepo) Create(c *entity.Client) error { r.clients[c.ID] = c; return nil }

func (r *memClientRepo) GetByID(id string) (*entity.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	return c, nil
}

func (r *memClientRepo) List(limit, offset int) ([]*entity.Client, error) {
	out := make([]*entity.Client, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, c)
	}
	return out, nil
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
	var out []*repository.MovementView
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
		out = append(out, &repository.MovementView{InventoryMovement: *m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq > out[j].Seq })
	return out, nil
}

func (r *memMovementRepo) LastSnapshot(productID string) (int, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	found := false
	newStock := 0
	var bestSeq int64 = -1
	for _, m := range r.movements {
		if m.ProductID == productID && m.Seq > bestSeq {
			bestSeq = m.Seq
			newStock = m.NewStock
			found = true
		}
	}
	return newStock, found, nil
}

func (r *memMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

type memOrderRepo struct {
	mu             sync.Mutex
	orders         map[string]*entity.Order
	createCalls    int
	failNextCreate error
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[string]*entity.Order)}
}

func cloneOrder(o *entity.Order) *entity.Order {
	cp := *o
	cp.Items = make([]entity.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return &cp
}

func (r *memOrderRepo) Create(o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createCalls++
	if err := r.failNextCreate; err != nil {
		r.failNextCreate = nil
		return err
	}
	for _, existing := range r.orders {
		if existing.OrderNumber == o.OrderNumber {
			return domain.ErrDuplicate
		}
	}
	r.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *memOrderRepo) GetByID(id string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *memOrderRepo) GetByOrderNumber(number string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

func (r *memOrderRepo) UpdateStatus(o *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[o.ID]
	if !ok {
		return nil
	}
	stored.Status = o.Status
	stored.PaymentStatus = o.PaymentStatus
	stored.DeliveredDate = o.DeliveredDate
	stored.CancelledDate = o.CancelledDate
	stored.CancelReason = o.CancelReason
	stored.CancelledBy = o.CancelledBy
	stored.UpdatedAt = o.UpdatedAt
	return nil
}

func (r *memOrderRepo) ExistsByOrderNumber(number string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *memOrderRepo) List(limit, offset int) ([]*repository.OrderView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*repository.OrderView, 0, len(r.orders))
	for _, o := range r.orders {
		out = append(out, &repository.OrderView{Order: *cloneOrder(o)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memOrderRepo) ListByStatus(status string, limit, offset int) ([]*repository.OrderView, error) {
	all, _ := r.List(limit, offset)
	out := make([]*repository.OrderView, 0, len(all))
	for _, v := range all {
		if v.Status == status {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func (r *memOrderRepo) GetView(id string) (*repository.OrderView, error) {
	o, err := r.GetByID(id)
	if err != nil || o == nil {
		return nil, err
	}
	return &repository.OrderView{Order: *o, ClientName: "Cliente", UserName: "Usuario"}, nil
}

// fakeTxRunner sirve tanto al MovementService como al UseCase de órdenes.
// Serializa las "transacciones" con un mutex y revierte los tres repos al
// estado previo cuando fn falla.
type fakeTxRunner struct {
	mu            sync.Mutex
	movRepo       *memMovementRepo
	productRepo   *memProductRepo
	orderRepo     *memOrderRepo
	runOrderCalls int
}

func (tr *fakeTxRunner) snapshot() func() {
	tr.movRepo.mu.Lock()
	movs := make([]*entity.InventoryMovement, len(tr.movRepo.movements))
	for i, m := range tr.movRepo.movements {
		cp := *m
		movs[i] = &cp
	}
	seq := tr.movRepo.seq
	tr.movRepo.mu.Unlock()

	tr.productRepo.mu.Lock()
	products := make(map[string]*entity.Product, len(tr.productRepo.products))
	for id, p := range tr.productRepo.products {
		cp := *p
		products[id] = &cp
	}
	tr.productRepo.mu.Unlock()

	tr.orderRepo.mu.Lock()
	orders := make(map[string]*entity.Order, len(tr.orderRepo.orders))
	for id, o := range tr.orderRepo.orders {
		orders[id] = cloneOrder(o)
	}
	tr.orderRepo.mu.Unlock()

	return func() {
		tr.movRepo.mu.Lock()
		tr.movRepo.movements = movs
		tr.movRepo.seq = seq
		tr.movRepo.mu.Unlock()

		tr.productRepo.mu.Lock()
		tr.productRepo.products = products
		tr.productRepo.mu.Unlock()

		tr.orderRepo.mu.Lock()
		tr.orderRepo.orders = orders
		tr.orderRepo.mu.Unlock()
	}
}

func (tr *fakeTxRunner) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	rollback := tr.snapshot()
	if err := fn(tr.movRepo, tr.productRepo); err != nil {
		rollback()
		return err
	}
	return nil
}

func (tr *fakeTxRunner) RunOrder(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
) error) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.runOrderCalls++
	rollback := tr.snapshot()
	if err := fn(tr.movRepo, tr.productRepo, tr.orderRepo); err != nil {
		rollback()
		return err
	}
	return nil
}

// stubReceipts genera un comprobante trivial.
type stubReceipts struct{}

func (stubReceipts) Generate(view *repository.OrderView, _ []order.ReceiptLine) ([]byte, error) {
	return []byte("%PDF-stub " + view.OrderNumber), nil
}
