package services

import (
	"context"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
)

// MenuService decides which menus a customer can order from right now.
type MenuService struct {
	store OrderStore
}

// NewMenuService creates a menu validity filter over store
func NewMenuService(store OrderStore) *MenuService {
	return &MenuService{store: store}
}

// InOrderWindow reports whether now lies within the menu's order window, bounds included.
func InOrderWindow(menu models.Menu, now time.Time) bool {
	return !now.Before(menu.OrderBegin) && !now.After(menu.OrderEnd)
}

// IsOrderable applies the full predicate: window open and no open order of
// the customer for the menu.
func (s *MenuService) IsOrderable(ctx context.Context, menu models.Menu, customerID uint, now time.Time) (bool, error) {
	if !InOrderWindow(menu, now) {
		return false, nil
	}
	ordered, err := s.store.HasOpenOrder(ctx, customerID, menu.ID)
	if err != nil {
		return false, err
	}
	return !ordered, nil
}

// ValidMenus lists the orderable menus of a canteen by date.
func (s *MenuService) ValidMenus(ctx context.Context, canteenID, customerID uint, now time.Time) ([]models.Menu, error) {
	menus, err := s.store.ListMenus(ctx, canteenID)
	if err != nil {
		return nil, err
	}

	var valid []models.Menu
	for _, menu := range menus {
		ok, err := s.IsOrderable(ctx, menu, customerID, now)
		if err != nil {
			return nil, err
		}
		if ok {
			valid = append(valid, menu)
		}
	}
	if len(valid) == 0 {
		return nil, ErrNoValidMenus
	}
	return valid, nil
}

// CheckOrderable loads a menu with its positions and fails with
// ErrStaleMenu unless it belongs to the canteen and is orderable at now.
func (s *MenuService) CheckOrderable(ctx context.Context, menuID, canteenID, customerID uint, now time.Time) (*models.Menu, error) {
	menu, err := s.store.GetMenu(ctx, menuID)
	if err != nil {
		return nil, err
	}
	if menu == nil || menu.CanteenID != canteenID {
		return nil, ErrStaleMenu
	}
	ok, err := s.IsOrderable(ctx, *menu, customerID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrStaleMenu
	}
	return menu, nil
}
