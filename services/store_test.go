package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

// memStore is an in-memory stand-in for the database used by the order and
// cart services. A transaction holds the store mutex for its whole duration
// and restores a snapshot when fn fails, which gives the same serialization
// the row locks give on a real database.
type memStore struct {
	mu sync.Mutex

	products map[uint]*models.Product
	cart     map[uint]*models.CartItem
	orders   map[uint]*models.Order
	users    map[uint]*models.User

	nextCartID  uint
	nextOrderID uint
	nextItemID  uint

	// failCreateOrder makes CreateOrder fail once set.
	failCreateOrder error
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uint]*models.Product{},
		cart:     map[uint]*models.CartItem{},
		orders:   map[uint]*models.Order{},
		users:    map[uint]*models.User{},
	}
}

type memSnapshot struct {
	products map[uint]models.Product
	cart     map[uint]models.CartItem
	orders   map[uint]models.Order
	next     [3]uint
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products: make(map[uint]models.Product, len(s.products)),
		cart:     make(map[uint]models.CartItem, len(s.cart)),
		orders:   make(map[uint]models.Order, len(s.orders)),
		next:     [3]uint{s.nextCartID, s.nextOrderID, s.nextItemID},
	}
	for id, p := range s.products {
		snap.products[id] = *p
	}
	for id, c := range s.cart {
		snap.cart[id] = *c
	}
	for id, o := range s.orders {
		cp := *o
		cp.Items = append([]models.OrderItem(nil), o.Items...)
		snap.orders[id] = cp
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.products = make(map[uint]*models.Product, len(snap.products))
	for id, p := range snap.products {
		p := p
		s.products[id] = &p
	}
	s.cart = make(map[uint]*models.CartItem, len(snap.cart))
	for id, c := range snap.cart {
		c := c
		s.cart[id] = &c
	}
	s.orders = make(map[uint]*models.Order, len(snap.orders))
	for id, o := range snap.orders {
		o := o
		s.orders[id] = &o
	}
	s.nextCartID, s.nextOrderID, s.nextItemID = snap.next[0], snap.next[1], snap.next[2]
}

// transact runs fn under the store lock, rolling back on error. Nested calls
// from inside a transaction run fn directly.
func (s *memStore) transact(inTx bool, fn func() error) error {
	if inTx {
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) read(inTx bool, fn func()) {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

func (s *memStore) addProduct(p models.Product) *models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.products[p.ID] = &cp
	return &cp
}

func (s *memStore) addCartLine(userID, productID uint, size string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextCartID++
	owner := userID
	s.cart[s.nextCartID] = &models.CartItem{
		ID:        s.nextCartID,
		UserID:    &owner,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
		CreatedAt: time.Now(),
	}
}

func (s *memStore) stockOf(productID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[productID].Stock
}

func (s *memStore) setPrice(productID uint, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[productID].Price = price
}

func (s *memStore) cartLines(userID uint) []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []models.CartItem
	for _, c := range s.cart {
		if c.UserID != nil && *c.UserID == userID {
			lines = append(lines, *c)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

// memOrderRepo implements repository.IOrderRepository over memStore.
type memOrderRepo struct {
	store *memStore
	inTx  bool
}

func (r *memOrderRepo) Transaction(ctx context.Context, fn func(tx repository.IOrderRepository) error) error {
	return r.store.transact(r.inTx, func() error {
		return fn(&memOrderRepo{store: r.store, inTx: true})
	})
}

func (r *memOrderRepo) LockCartLines(ctx context.Context, userID uint) ([]repository.CheckoutLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var lines []repository.CheckoutLine
	r.store.read(r.inTx, func() {
		for _, c := range r.store.cart {
			if c.UserID == nil || *c.UserID != userID {
				continue
			}
			p, ok := r.store.products[c.ProductID]
			if !ok {
				continue
			}
			lines = append(lines, repository.CheckoutLine{
				CartItemID:  c.ID,
				ProductID:   p.ID,
				ProductName: p.Name,
				Size:        c.Size,
				Quantity:    c.Quantity,
				Price:       p.Price,
				Stock:       p.Stock,
			})
		}
	})
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].ProductID != lines[j].ProductID {
			return lines[i].ProductID < lines[j].ProductID
		}
		return lines[i].CartItemID < lines[j].CartItemID
	})
	return lines, nil
}

func (r *memOrderRepo) DecrementStock(ctx context.Context, productID uint, quantity int) error {
	var err error
	r.store.read(r.inTx, func() {
		p, ok := r.store.products[productID]
		if !ok || p.Stock < quantity {
			err = repository.ErrStockConflict
			return
		}
		p.Stock -= quantity
	})
	return err
}

func (r *memOrderRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	var err error
	r.store.read(r.inTx, func() {
		if r.store.failCreateOrder != nil {
			err = r.store.failCreateOrder
			return
		}
		r.store.nextOrderID++
		order.ID = r.store.nextOrderID
		for i := range order.Items {
			r.store.nextItemID++
			order.Items[i].ID = r.store.nextItemID
			order.Items[i].OrderID = order.ID
		}
		cp := *order
		cp.Items = append([]models.OrderItem(nil), order.Items...)
		r.store.orders[order.ID] = &cp
	})
	return err
}

func (r *memOrderRepo) ClearCart(ctx context.Context, userID uint) error {
	r.store.read(r.inTx, func() {
		for id, c := range r.store.cart {
			if c.UserID != nil && *c.UserID == userID {
				delete(r.store.cart, id)
			}
		}
	})
	return nil
}

func (r *memOrderRepo) loadOrder(id uint) (*models.Order, error) {
	o, ok := r.store.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	cp.Items = append([]models.OrderItem(nil), o.Items...)
	if cp.UserID != nil {
		cp.User = r.store.users[*cp.UserID]
	}
	return &cp, nil
}

func (r *memOrderRepo) FindOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var (
		order *models.Order
		err   error
	)
	r.store.read(r.inTx, func() { order, err = r.loadOrder(id) })
	return order, err
}

func (r *memOrderRepo) FindOrderForUser(ctx context.Context, id, userID uint) (*models.Order, error) {
	order, err := r.FindOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	order.User = nil
	return order, nil
}

func (r *memOrderRepo) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	return r.FindOrderByID(ctx, id)
}

func (r *memOrderRepo) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	var err error
	r.store.read(r.inTx, func() {
		o, ok := r.store.orders[id]
		if !ok {
			err = gorm.ErrRecordNotFound
			return
		}
		o.Status = status
	})
	return err
}

func (r *memOrderRepo) summaries(keep func(*models.Order) bool) []repository.OrderSummary {
	var out []repository.OrderSummary
	r.store.read(r.inTx, func() {
		for _, o := range r.store.orders {
			if !keep(o) {
				continue
			}
			out = append(out, repository.OrderSummary{
				ID:              o.ID,
				UserID:          o.UserID,
				TotalAmount:     o.TotalAmount,
				ShippingAddress: o.ShippingAddress,
				Status:          o.Status,
				OrderDate:       o.OrderDate,
				ItemCount:       int64(len(o.Items)),
			})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *memOrderRepo) ListOrdersByUser(ctx context.Context, userID uint) ([]repository.OrderSummary, error) {
	return r.summaries(func(o *models.Order) bool {
		return o.UserID != nil && *o.UserID == userID
	}), nil
}

func (r *memOrderRepo) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderSummary, error) {
	return r.summaries(func(o *models.Order) bool {
		return filter.Status == "" || o.Status == filter.Status
	}), nil
}

// memCartRepo implements repository.ICartRepository over memStore.
type memCartRepo struct {
	store *memStore
	inTx  bool
}

func (r *memCartRepo) Transaction(ctx context.Context, fn func(tx repository.ICartRepository) error) error {
	return r.store.transact(r.inTx, func() error {
		return fn(&memCartRepo{store: r.store, inTx: true})
	})
}

func (r *memCartRepo) LockProduct(ctx context.Context, productID uint) (*models.Product, error) {
	var (
		product *models.Product
		err     error
	)
	r.store.read(r.inTx, func() {
		p, ok := r.store.products[productID]
		if !ok {
			err = gorm.ErrRecordNotFound
			return
		}
		cp := *p
		product = &cp
	})
	return product, err
}

func (r *memCartRepo) FindLine(ctx context.Context, userID, productID uint, size string) (*models.CartItem, error) {
	var line *models.CartItem
	r.store.read(r.inTx, func() {
		for _, c := range r.store.cart {
			if c.UserID != nil && *c.UserID == userID && c.ProductID == productID && c.Size == size {
				cp := *c
				line = &cp
				return
			}
		}
	})
	if line == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return line, nil
}

func (r *memCartRepo) FindLineByID(ctx context.Context, userID, lineID uint) (*models.CartItem, error) {
	var line *models.CartItem
	r.store.read(r.inTx, func() {
		c, ok := r.store.cart[lineID]
		if !ok || c.UserID == nil || *c.UserID != userID {
			return
		}
		cp := *c
		if p, ok := r.store.products[c.ProductID]; ok {
			product := *p
			cp.Product = &product
		}
		line = &cp
	})
	if line == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return line, nil
}

func (r *memCartRepo) CreateLine(ctx context.Context, line *models.CartItem) error {
	r.store.read(r.inTx, func() {
		r.store.nextCartID++
		line.ID = r.store.nextCartID
		line.CreatedAt = time.Now()
		cp := *line
		r.store.cart[line.ID] = &cp
	})
	return nil
}

func (r *memCartRepo) SetQuantity(ctx context.Context, lineID uint, quantity int) error {
	r.store.read(r.inTx, func() {
		if c, ok := r.store.cart[lineID]; ok {
			c.Quantity = quantity
		}
	})
	return nil
}

func (r *memCartRepo) DeleteLine(ctx context.Context, userID, lineID uint) (bool, error) {
	deleted := false
	r.store.read(r.inTx, func() {
		c, ok := r.store.cart[lineID]
		if ok && c.UserID != nil && *c.UserID == userID {
			delete(r.store.cart, lineID)
			deleted = true
		}
	})
	return deleted, nil
}

func (r *memCartRepo) ListLines(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var lines []models.CartItem
	r.store.read(r.inTx, func() {
		for _, c := range r.store.cart {
			if c.UserID == nil || *c.UserID != userID {
				continue
			}
			cp := *c
			if p, ok := r.store.products[c.ProductID]; ok {
				product := *p
				cp.Product = &product
			}
			lines = append(lines, cp)
		}
	})
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID > lines[j].ID })
	return lines, nil
}
