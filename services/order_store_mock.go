package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
)

// MockOrderStore is an in-memory OrderStore for testing
type MockOrderStore struct {
	mu          sync.RWMutex
	customers   map[uint]models.Customer
	permissions []models.CustomerPermission
	canteens    map[uint]models.Canteen
	places      map[uint]models.DeliveryPlace
	menus       map[uint]models.Menu
	orders      map[uint]models.Order
	nextOrderID uint

	// Err, when set, is returned by every call to simulate an outage.
	Err error
}

// NewMockOrderStore creates an empty mock store
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		customers:   make(map[uint]models.Customer),
		canteens:    make(map[uint]models.Canteen),
		places:      make(map[uint]models.DeliveryPlace),
		menus:       make(map[uint]models.Menu),
		orders:      make(map[uint]models.Order),
		nextOrderID: 1,
	}
}

// AddCustomer seeds a customer
func (m *MockOrderStore) AddCustomer(c models.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
}

// AddPermission seeds a permission
func (m *MockOrderStore) AddPermission(p models.CustomerPermission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.permissions = append(m.permissions, p)
}

// AddCanteen seeds a canteen
func (m *MockOrderStore) AddCanteen(c models.Canteen) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canteens[c.ID] = c
}

// AddPlace seeds a delivery place
func (m *MockOrderStore) AddPlace(p models.DeliveryPlace) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.places[p.ID] = p
}

// AddMenu seeds a menu together with its positions
func (m *MockOrderStore) AddMenu(menu models.Menu) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.menus[menu.ID] = menu
}

// SetMenuWindow moves the order window of a seeded menu
func (m *MockOrderStore) SetMenuWindow(menuID uint, begin, end time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	menu := m.menus[menuID]
	menu.OrderBegin = begin
	menu.OrderEnd = end
	m.menus[menuID] = menu
}

// AddOrder seeds an existing order and returns its id
func (m *MockOrderStore) AddOrder(o models.Order) uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o.ID == 0 {
		o.ID = m.nextOrderID
	}
	if o.ID >= m.nextOrderID {
		m.nextOrderID = o.ID + 1
	}
	m.orders[o.ID] = o
	return o.ID
}

// Orders returns a snapshot of all stored orders by id
func (m *MockOrderStore) Orders() []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Customer returns a seeded customer as currently stored
func (m *MockOrderStore) Customer(id uint) models.Customer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.customers[id]
}

func (m *MockOrderStore) FindCustomerByPhone(_ context.Context, phone string) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.customers {
		if c.PhoneNumber == phone {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockOrderStore) FindCustomerByHandle(_ context.Context, handle int64) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, c := range m.customers {
		if c.Handle != nil && *c.Handle == handle {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MockOrderStore) GetCustomer(_ context.Context, id uint) (*models.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MockOrderStore) ListPermissions(_ context.Context, customerID uint) ([]models.CustomerPermission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.CustomerPermission
	for _, p := range m.permissions {
		if p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockOrderStore) BindCustomer(_ context.Context, customerID uint, handle int64, placeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for id, c := range m.customers {
		if id != customerID && c.Handle != nil && *c.Handle == handle {
			c.Handle = nil
			m.customers[id] = c
		}
	}
	c := m.customers[customerID]
	c.Handle = &handle
	c.PlaceID = &placeID
	m.customers[customerID] = c
	return nil
}

func (m *MockOrderStore) UpdateCustomerPlace(_ context.Context, customerID, placeID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c := m.customers[customerID]
	c.PlaceID = &placeID
	m.customers[customerID] = c
	return nil
}

func (m *MockOrderStore) GetCanteen(_ context.Context, id uint) (*models.Canteen, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.canteens[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *MockOrderStore) GetDeliveryPlace(_ context.Context, id uint) (*models.DeliveryPlace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.places[id]
	if !ok {
		return nil, nil
	}
	p.Canteen = m.canteens[p.CanteenID]
	return &p, nil
}

func (m *MockOrderStore) ListDeliveryPlaces(_ context.Context, canteenID uint) ([]models.DeliveryPlace, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.DeliveryPlace
	for _, p := range m.places {
		if p.CanteenID == canteenID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockOrderStore) ListMenus(_ context.Context, canteenID uint) ([]models.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Menu
	for _, menu := range m.menus {
		if menu.CanteenID == canteenID {
			menu.Positions = nil
			out = append(out, menu)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (m *MockOrderStore) GetMenu(_ context.Context, id uint) (*models.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	menu, ok := m.menus[id]
	if !ok {
		return nil, nil
	}
	menu.Positions = append([]models.MenuPosition(nil), menu.Positions...)
	sort.Slice(menu.Positions, func(i, j int) bool { return menu.Positions[i].ID < menu.Positions[j].ID })
	return &menu, nil
}

func (m *MockOrderStore) HasOpenOrder(_ context.Context, customerID, menuID uint) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return false, m.Err
	}
	for _, o := range m.orders {
		if o.CustomerID == customerID && o.MenuID == menuID && !o.Exported() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockOrderStore) CreateOrder(_ context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	order.ID = m.nextOrderID
	m.nextOrderID++
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	for i := range order.Details {
		order.Details[i].ID = uint(i + 1)
		order.Details[i].OrderID = order.ID
	}
	stored := *order
	stored.Details = append([]models.OrderDetail(nil), order.Details...)
	m.orders[order.ID] = stored
	return nil
}

func (m *MockOrderStore) DeleteOrder(_ context.Context, orderID uint, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	order, ok := m.orders[orderID]
	if !ok {
		return nil
	}
	if !Deletable(m.hydrate(order), now) {
		return ErrOrderNotDeletable
	}
	delete(m.orders, orderID)
	return nil
}

// hydrate fills the associations the GORM store would preload.
func (m *MockOrderStore) hydrate(o models.Order) models.Order {
	o.Menu = m.menus[o.MenuID]
	o.Menu.Positions = nil
	place := m.places[o.PlaceID]
	place.Canteen = m.canteens[place.CanteenID]
	o.Place = place
	if c, ok := m.customers[o.CustomerID]; ok {
		o.Customer = &c
	}

	positions := make(map[uint]models.MenuPosition)
	for _, p := range m.menus[o.MenuID].Positions {
		positions[p.ID] = p
	}
	details := make([]models.OrderDetail, len(o.Details))
	for i, d := range o.Details {
		d.MenuPosition = positions[d.MenuPositionID]
		details[i] = d
	}
	o.Details = details
	return o
}

func (m *MockOrderStore) ListOrders(_ context.Context, customerID uint) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Order
	for _, o := range m.orders {
		if o.CustomerID == customerID && !o.Exported() {
			out = append(out, m.hydrate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockOrderStore) ListOrdersForExport(_ context.Context, day time.Time) ([]models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.Order
	for _, o := range m.orders {
		if o.Exported() {
			continue
		}
		if sameDay(m.menus[o.MenuID].OrderEnd, day) {
			out = append(out, m.hydrate(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockOrderStore) MarkExported(_ context.Context, orderIDs []uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, id := range orderIDs {
		if o, ok := m.orders[id]; ok {
			sent := at
			o.SentAt = &sent
			m.orders[id] = o
		}
	}
	return nil
}
