package usecase_test

import (
	"context"
	"errors"
	"sync"

	"fruitpack/internal/domain/model"
	"fruitpack/internal/infra/paystack"
	repo "fruitpack/internal/repository"
)

// fakeStore はDB一式をメモリで模したもの。
// WithinTxがロックを握ることで、条件付きUPDATEがDBと同じく直列化される
// （クレーム競合テストはこの性質に乗っている）。
type fakeStore struct {
	mu sync.Mutex

	orders      map[int64]model.Order
	nextOrderID int64

	items map[int64][]model.OrderItem

	claims      []model.Claim
	nextClaimID int64

	drivers      map[int64]model.Driver
	nextDriverID int64

	products map[int64]model.Product

	users      map[int64]model.User
	nextUserID int64

	events []model.OrderEvent
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   map[int64]model.Order{},
		items:    map[int64][]model.OrderItem{},
		drivers:  map[int64]model.Driver{},
		products: map[int64]model.Product{},
		users:    map[int64]model.User{},
	}
}

func (s *fakeStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

func (s *fakeStore) Orders() repo.OrderRepository         { return (*fakeOrders)(s) }
func (s *fakeStore) OrderItems() repo.OrderItemRepository { return (*fakeOrderItems)(s) }
func (s *fakeStore) Claims() repo.ClaimRepository         { return (*fakeClaims)(s) }
func (s *fakeStore) Drivers() repo.DriverRepository       { return (*fakeDrivers)(s) }
func (s *fakeStore) Products() repo.ProductRepository     { return (*fakeProducts)(s) }
func (s *fakeStore) Inventory() repo.InventoryRepository  { return (*fakeInventory)(s) }
func (s *fakeStore) Events() repo.OrderEventRepository    { return (*fakeEvents)(s) }

// ---- テストデータ投入ヘルパー ----

func (s *fakeStore) putProduct(p model.Product) {
	s.products[p.ID] = p
}

func (s *fakeStore) putOrder(o model.Order) int64 {
	if o.ID == 0 {
		s.nextOrderID++
		o.ID = s.nextOrderID
	} else if o.ID > s.nextOrderID {
		s.nextOrderID = o.ID
	}
	s.orders[o.ID] = o
	return o.ID
}

func (s *fakeStore) putDriver(d model.Driver) int64 {
	if d.ID == 0 {
		s.nextDriverID++
		d.ID = s.nextDriverID
	} else if d.ID > s.nextDriverID {
		s.nextDriverID = d.ID
	}
	s.drivers[d.ID] = d
	return d.ID
}

func (s *fakeStore) putUser(u model.User) int64 {
	if u.ID == 0 {
		s.nextUserID++
		u.ID = s.nextUserID
	} else if u.ID > s.nextUserID {
		s.nextUserID = u.ID
	}
	s.users[u.ID] = u
	return u.ID
}

// ---- Orders ----

type fakeOrders fakeStore

func (f *fakeOrders) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}

func (f *fakeOrders) FindByOrderNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	for _, o := range f.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return model.Order{}, repo.ErrNotFound
}

func (f *fakeOrders) Create(ctx context.Context, order model.Order) (int64, error) {
	f.nextOrderID++
	order.ID = f.nextOrderID
	f.orders[order.ID] = order
	return order.ID, nil
}

func (f *fakeOrders) ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeOrders) ListAvailable(ctx context.Context) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.DriverID == nil && o.DeliveryStatus == model.DeliveryStatusPending {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListByDriverID(ctx context.Context, driverID int64, statuses []model.DeliveryStatus) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.DriverID == nil || *o.DriverID != driverID {
			continue
		}
		for _, st := range statuses {
			if o.DeliveryStatus == st {
				out = append(out, o)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeOrders) AssignDriverIfUnclaimed(ctx context.Context, orderID int64, driverID int64) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return false, nil
	}
	// 条件付きUPDATE：未割当のpendingのときだけ書ける
	if o.DriverID != nil || o.DeliveryStatus != model.DeliveryStatusPending {
		return false, nil
	}
	o.DriverID = &driverID
	f.orders[orderID] = o
	return true, nil
}

func (f *fakeOrders) UpdateDeliveryStatusIf(ctx context.Context, orderID int64, from model.DeliveryStatus, to model.DeliveryStatus) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.DeliveryStatus != from {
		return false, nil
	}
	o.DeliveryStatus = to
	f.orders[orderID] = o
	return true, nil
}

func (f *fakeOrders) UpdatePaymentStatusIf(ctx context.Context, orderID int64, from model.PaymentStatus, to model.PaymentStatus) (bool, error) {
	o, ok := f.orders[orderID]
	if !ok || o.PaymentStatus != from {
		return false, nil
	}
	o.PaymentStatus = to
	f.orders[orderID] = o
	return true, nil
}

// ---- OrderItems ----

type fakeOrderItems fakeStore

func (f *fakeOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return f.items[orderID], nil
}

func (f *fakeOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	for i := range items {
		items[i].OrderID = orderID
	}
	f.items[orderID] = append(f.items[orderID], items...)
	return nil
}

// ---- Claims ----

type fakeClaims fakeStore

func (f *fakeClaims) Create(ctx context.Context, claim model.Claim) (int64, error) {
	f.nextClaimID++
	claim.ID = f.nextClaimID
	f.claims = append(f.claims, claim)
	return claim.ID, nil
}

func (f *fakeClaims) ListByDriverID(ctx context.Context, driverID int64, source model.ClaimSource) ([]model.Claim, error) {
	var out []model.Claim
	for _, c := range f.claims {
		if c.DriverID == driverID && c.Source == source {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeClaims) FindApprovedByOrderID(ctx context.Context, orderID int64) (model.Claim, error) {
	for _, c := range f.claims {
		if c.OrderID == orderID && c.Status == model.ClaimStatusApproved {
			return c, nil
		}
	}
	return model.Claim{}, repo.ErrNotFound
}

// ---- Drivers ----

type fakeDrivers fakeStore

func (f *fakeDrivers) Create(ctx context.Context, driver model.Driver) (int64, error) {
	f.nextDriverID++
	driver.ID = f.nextDriverID
	f.drivers[driver.ID] = driver
	return driver.ID, nil
}

func (f *fakeDrivers) FindByID(ctx context.Context, driverID int64) (model.Driver, error) {
	d, ok := f.drivers[driverID]
	if !ok {
		return model.Driver{}, repo.ErrNotFound
	}
	return d, nil
}

func (f *fakeDrivers) FindByUserID(ctx context.Context, userID int64) (model.Driver, error) {
	for _, d := range f.drivers {
		if d.UserID == userID {
			return d, nil
		}
	}
	return model.Driver{}, repo.ErrNotFound
}

func (f *fakeDrivers) UpdateStatus(ctx context.Context, driverID int64, status model.DriverStatus) error {
	d, ok := f.drivers[driverID]
	if !ok {
		return repo.ErrNotFound
	}
	d.Status = status
	f.drivers[driverID] = d
	return nil
}

func (f *fakeDrivers) UpdateLocation(ctx context.Context, driverID int64, lat float64, lng float64) error {
	d, ok := f.drivers[driverID]
	if !ok {
		return repo.ErrNotFound
	}
	d.Latitude = lat
	d.Longitude = lng
	f.drivers[driverID] = d
	return nil
}

// ---- Users ----

type fakeUsers fakeStore

func (f *fakeUsers) Create(ctx context.Context, user model.User) (int64, error) {
	f.nextUserID++
	user.ID = f.nextUserID
	f.users[user.ID] = user
	return user.ID, nil
}

func (f *fakeUsers) FindByID(ctx context.Context, userID int64) (model.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return model.User{}, repo.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repo.ErrNotFound
}

// ---- Products ----

type fakeProducts fakeStore

func (f *fakeProducts) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return model.Product{}, repo.ErrNotFound
	}
	return p, nil
}

func (f *fakeProducts) List(ctx context.Context, category string, page int, limit int) ([]model.Product, int64, error) {
	var out []model.Product
	for _, p := range f.products {
		if !p.IsActive {
			continue
		}
		if category != "" && p.CategoryName != category {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

// CartUsecaseなどTx外から使う場合もロックを通す。
type lockedProducts struct {
	s *fakeStore
}

func (l *lockedProducts) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return (*fakeProducts)(l.s).FindByID(ctx, productID)
}

func (l *lockedProducts) List(ctx context.Context, category string, page int, limit int) ([]model.Product, int64, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return (*fakeProducts)(l.s).List(ctx, category, page, limit)
}

// ---- Inventory ----

type fakeInventory fakeStore

func (f *fakeInventory) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	p, ok := f.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	f.products[productID] = p
	return true, nil
}

func (f *fakeInventory) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	p, ok := f.products[productID]
	if !ok {
		return repo.ErrNotFound
	}
	p.Stock += qty
	f.products[productID] = p
	return nil
}

// ---- Events ----

type fakeEvents fakeStore

func (f *fakeEvents) Create(ctx context.Context, event model.OrderEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEvents) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderEvent, error) {
	var out []model.OrderEvent
	for _, e := range f.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---- PaymentGateway ----

// fakeGateway は決済プロバイダのスタブ。
type fakeGateway struct {
	mu sync.Mutex

	failInit bool

	// reference -> verify結果（"success" / "abandoned" など）
	verifyStatus map[string]string

	initCalls   []paystack.InitializeInput
	verifyCalls []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{verifyStatus: map[string]string{}}
}

func (g *fakeGateway) Initialize(ctx context.Context, in paystack.InitializeInput) (paystack.InitializeOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.initCalls = append(g.initCalls, in)
	if g.failInit {
		return paystack.InitializeOutput{}, errors.New("provider down")
	}
	return paystack.InitializeOutput{
		AuthorizationURL: "https://checkout.paystack.test/" + in.Reference,
		AccessCode:       "AC_" + in.Reference,
		Reference:        in.Reference,
	}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.verifyCalls = append(g.verifyCalls, reference)
	st, ok := g.verifyStatus[reference]
	if !ok {
		return "", errors.New("unknown reference")
	}
	return st, nil
}
