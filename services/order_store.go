package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"gorm.io/gorm"
)

// OrderStore is the persistence boundary of the ordering engine.
// Single-row lookups return (nil, nil) when nothing matches.
type OrderStore interface {
	FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error)
	FindCustomerByHandle(ctx context.Context, handle int64) (*models.Customer, error)
	GetCustomer(ctx context.Context, id uint) (*models.Customer, error)
	ListPermissions(ctx context.Context, customerID uint) ([]models.CustomerPermission, error)
	BindCustomer(ctx context.Context, customerID uint, handle int64, placeID uint) error
	UpdateCustomerPlace(ctx context.Context, customerID, placeID uint) error

	GetCanteen(ctx context.Context, id uint) (*models.Canteen, error)
	GetDeliveryPlace(ctx context.Context, id uint) (*models.DeliveryPlace, error)
	ListDeliveryPlaces(ctx context.Context, canteenID uint) ([]models.DeliveryPlace, error)

	ListMenus(ctx context.Context, canteenID uint) ([]models.Menu, error)
	GetMenu(ctx context.Context, id uint) (*models.Menu, error)

	HasOpenOrder(ctx context.Context, customerID, menuID uint) (bool, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	DeleteOrder(ctx context.Context, orderID uint, now time.Time) error
	ListOrders(ctx context.Context, customerID uint) ([]models.Order, error)
	ListOrdersForExport(ctx context.Context, day time.Time) ([]models.Order, error)
	MarkExported(ctx context.Context, orderIDs []uint, at time.Time) error
}

// GormOrderStore implements OrderStore on top of GORM.
type GormOrderStore struct {
	db *gorm.DB
}

// NewGormOrderStore creates a store bound to db
func NewGormOrderStore(db *gorm.DB) *GormOrderStore {
	return &GormOrderStore{db: db}
}

func firstOrNil[T any](result *gorm.DB, out *T) (*T, error) {
	if err := result.Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return out, nil
}

func (s *GormOrderStore) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	var customer models.Customer
	c, err := firstOrNil(s.db.WithContext(ctx).Where("phone_number = ?", phone).First(&customer), &customer)
	if err != nil {
		return nil, fmt.Errorf("find customer by phone: %w", err)
	}
	return c, nil
}

func (s *GormOrderStore) FindCustomerByHandle(ctx context.Context, handle int64) (*models.Customer, error) {
	var customer models.Customer
	c, err := firstOrNil(s.db.WithContext(ctx).Where("handle = ?", handle).First(&customer), &customer)
	if err != nil {
		return nil, fmt.Errorf("find customer by handle: %w", err)
	}
	return c, nil
}

func (s *GormOrderStore) GetCustomer(ctx context.Context, id uint) (*models.Customer, error) {
	var customer models.Customer
	c, err := firstOrNil(s.db.WithContext(ctx).First(&customer, id), &customer)
	if err != nil {
		return nil, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

func (s *GormOrderStore) ListPermissions(ctx context.Context, customerID uint) ([]models.CustomerPermission, error) {
	var permissions []models.CustomerPermission
	if err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id").Find(&permissions).Error; err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return permissions, nil
}

// BindCustomer attaches a chat handle and a delivery place to the customer.
// A handle previously bound to another customer is released first.
func (s *GormOrderStore) BindCustomer(ctx context.Context, customerID uint, handle int64, placeID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Customer{}).
			Where("handle = ? AND id <> ?", handle, customerID).
			Update("handle", nil).Error; err != nil {
			return fmt.Errorf("release handle: %w", err)
		}
		if err := tx.Model(&models.Customer{ID: customerID}).
			Updates(map[string]interface{}{"handle": handle, "place_id": placeID}).Error; err != nil {
			return fmt.Errorf("bind customer: %w", err)
		}
		return nil
	})
}

func (s *GormOrderStore) UpdateCustomerPlace(ctx context.Context, customerID, placeID uint) error {
	if err := s.db.WithContext(ctx).Model(&models.Customer{ID: customerID}).Update("place_id", placeID).Error; err != nil {
		return fmt.Errorf("update delivery place: %w", err)
	}
	return nil
}

func (s *GormOrderStore) GetCanteen(ctx context.Context, id uint) (*models.Canteen, error) {
	var canteen models.Canteen
	c, err := firstOrNil(s.db.WithContext(ctx).First(&canteen, id), &canteen)
	if err != nil {
		return nil, fmt.Errorf("get canteen %d: %w", id, err)
	}
	return c, nil
}

func (s *GormOrderStore) GetDeliveryPlace(ctx context.Context, id uint) (*models.DeliveryPlace, error) {
	var place models.DeliveryPlace
	p, err := firstOrNil(s.db.WithContext(ctx).Preload("Canteen").First(&place, id), &place)
	if err != nil {
		return nil, fmt.Errorf("get delivery place %d: %w", id, err)
	}
	return p, nil
}

func (s *GormOrderStore) ListDeliveryPlaces(ctx context.Context, canteenID uint) ([]models.DeliveryPlace, error) {
	var places []models.DeliveryPlace
	if err := s.db.WithContext(ctx).Where("canteen_id = ?", canteenID).Order("id").Find(&places).Error; err != nil {
		return nil, fmt.Errorf("list delivery places: %w", err)
	}
	return places, nil
}

// ListMenus returns the canteen's menus by date. Positions are not loaded.
func (s *GormOrderStore) ListMenus(ctx context.Context, canteenID uint) ([]models.Menu, error) {
	var menus []models.Menu
	if err := s.db.WithContext(ctx).Where("canteen_id = ?", canteenID).Order("date, id").Find(&menus).Error; err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	return menus, nil
}

// GetMenu loads a menu with its positions in id order.
func (s *GormOrderStore) GetMenu(ctx context.Context, id uint) (*models.Menu, error) {
	var menu models.Menu
	m, err := firstOrNil(s.db.WithContext(ctx).
		Preload("Positions", func(db *gorm.DB) *gorm.DB { return db.Order("menu_positions.id") }).
		First(&menu, id), &menu)
	if err != nil {
		return nil, fmt.Errorf("get menu %d: %w", id, err)
	}
	return m, nil
}

// HasOpenOrder reports whether the customer already has a not yet exported
// order for the menu.
func (s *GormOrderStore) HasOpenOrder(ctx context.Context, customerID, menuID uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("customer_id = ? AND menu_id = ? AND sent_at IS NULL", customerID, menuID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check existing order: %w", err)
	}
	return count > 0, nil
}

// CreateOrder inserts the order and its details in one transaction.
func (s *GormOrderStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Menu", "Place", "Customer", "Details").Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range order.Details {
			order.Details[i].OrderID = order.ID
			if err := tx.Omit("MenuPosition").Create(&order.Details[i]).Error; err != nil {
				return fmt.Errorf("create order detail: %w", err)
			}
		}
		return nil
	})
}

// DeleteOrder removes an order that is still deletable at now. A missing
// order counts as deleted.
func (s *GormOrderStore) DeleteOrder(ctx context.Context, orderID uint, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Menu").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("load order %d: %w", orderID, err)
		}
		if !Deletable(order, now) {
			return ErrOrderNotDeletable
		}
		if err := tx.Where("order_id = ?", orderID).Delete(&models.OrderDetail{}).Error; err != nil {
			return fmt.Errorf("delete order details: %w", err)
		}
		if err := tx.Delete(&models.Order{}, orderID).Error; err != nil {
			return fmt.Errorf("delete order %d: %w", orderID, err)
		}
		return nil
	})
}

func (s *GormOrderStore) preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Menu").
		Preload("Place.Canteen").
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("order_details.id") }).
		Preload("Details.MenuPosition")
}

// ListOrders returns the customer's not yet exported orders, oldest first.
func (s *GormOrderStore) ListOrders(ctx context.Context, customerID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := s.preloadOrder(s.db.WithContext(ctx)).
		Where("customer_id = ? AND sent_at IS NULL", customerID).
		Order("created_at, id").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListOrdersForExport returns unexported orders whose menu order window
// closes on day.
func (s *GormOrderStore) ListOrdersForExport(ctx context.Context, day time.Time) ([]models.Order, error) {
	var pending []models.Order
	if err := s.preloadOrder(s.db.WithContext(ctx)).
		Preload("Customer").
		Where("sent_at IS NULL").
		Order("id").
		Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("list orders for export: %w", err)
	}

	orders := make([]models.Order, 0, len(pending))
	for _, order := range pending {
		if sameDay(order.Menu.OrderEnd, day) {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (s *GormOrderStore) MarkExported(ctx context.Context, orderIDs []uint, at time.Time) error {
	if len(orderIDs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Where("id IN ?", orderIDs).
		Update("sent_at", at).Error; err != nil {
		return fmt.Errorf("mark orders exported: %w", err)
	}
	return nil
}

// Deletable reports whether a customer may still cancel the order at now:
// it has not been exported and its menu is still accepting orders.
func Deletable(order models.Order, now time.Time) bool {
	return !order.Exported() && !now.After(order.Menu.OrderEnd)
}
