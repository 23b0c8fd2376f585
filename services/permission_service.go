package services

import (
	"context"
	"slices"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/kendall-kelly/canteen-orders/utils"
)

// Identity names a customer either by phone number (first contact) or by
// the chat handle bound during authorization.
type Identity struct {
	Phone  string
	Handle *int64
}

// AuthState is the authorization progress kept in the session between the
// phone step and the delivery place step.
type AuthState struct {
	CustomerID uint   `json:"customer_id"`
	Handle     int64  `json:"handle"`
	CanteenIDs []uint `json:"canteen_ids"`
}

// PermissionService resolves customers and the canteens they may order from.
type PermissionService struct {
	store OrderStore
}

// NewPermissionService creates a permission resolver over store
func NewPermissionService(store OrderStore) *PermissionService {
	return &PermissionService{store: store}
}

// IsActivePermission reports whether the grant covers asOf.
func IsActivePermission(p models.CustomerPermission, asOf time.Time) bool {
	return activeOn(p.BeginDate, p.EndDate, asOf)
}

// ValidCanteens returns the sorted ids of canteens the customer may order
// from at asOf.
func (s *PermissionService) ValidCanteens(ctx context.Context, customerID uint, asOf time.Time) ([]uint, error) {
	permissions, err := s.store.ListPermissions(ctx, customerID)
	if err != nil {
		return nil, err
	}

	var ids []uint
	for _, p := range permissions {
		if IsActivePermission(p, asOf) && !slices.Contains(ids, p.CanteenID) {
			ids = append(ids, p.CanteenID)
		}
	}
	if len(ids) == 0 {
		return nil, ErrNoActivePermission
	}
	slices.Sort(ids)
	return ids, nil
}

// ResolveCustomer finds the customer behind identity and the canteens they
// may currently order from.
func (s *PermissionService) ResolveCustomer(ctx context.Context, identity Identity, asOf time.Time) (*models.Customer, []uint, error) {
	var (
		customer *models.Customer
		err      error
	)
	switch {
	case identity.Handle != nil:
		customer, err = s.store.FindCustomerByHandle(ctx, *identity.Handle)
	case identity.Phone != "":
		phone, phoneErr := utils.NormalizePhone(identity.Phone)
		if phoneErr != nil {
			return nil, nil, wrapEngine(ErrUnknownCustomer, phoneErr)
		}
		customer, err = s.store.FindCustomerByPhone(ctx, phone)
	default:
		return nil, nil, ErrUnknownCustomer
	}
	if err != nil {
		return nil, nil, err
	}
	if customer == nil {
		return nil, nil, ErrUnknownCustomer
	}

	canteens, err := s.ValidCanteens(ctx, customer.ID, asOf)
	if err != nil {
		return nil, nil, err
	}
	return customer, canteens, nil
}

// StartAuthorization matches a shared phone number to a customer and
// remembers the handle that should be bound once a place is chosen.
func (s *PermissionService) StartAuthorization(ctx context.Context, phone string, handle int64, asOf time.Time) (*AuthState, error) {
	customer, canteens, err := s.ResolveCustomer(ctx, Identity{Phone: phone}, asOf)
	if err != nil {
		return nil, err
	}
	return &AuthState{CustomerID: customer.ID, Handle: handle, CanteenIDs: canteens}, nil
}

// Canteens loads the permitted canteens in id order. Ids without a
// canteen row are skipped.
func (s *PermissionService) Canteens(ctx context.Context, canteenIDs []uint) ([]models.Canteen, error) {
	if len(canteenIDs) == 0 {
		return nil, ErrNoActivePermission
	}
	canteens := make([]models.Canteen, 0, len(canteenIDs))
	for _, id := range canteenIDs {
		canteen, err := s.store.GetCanteen(ctx, id)
		if err != nil {
			return nil, err
		}
		if canteen != nil {
			canteens = append(canteens, *canteen)
		}
	}
	return canteens, nil
}

// DeliveryPlaces lists the places of a canteen the customer may choose.
// A zero canteenID selects the first permitted canteen.
func (s *PermissionService) DeliveryPlaces(ctx context.Context, canteenIDs []uint, canteenID uint, asOf time.Time) ([]models.DeliveryPlace, error) {
	if len(canteenIDs) == 0 {
		return nil, ErrNoActivePermission
	}
	if canteenID == 0 {
		canteenID = canteenIDs[0]
	}
	if !slices.Contains(canteenIDs, canteenID) {
		return nil, ErrNoActivePermission
	}

	places, err := s.store.ListDeliveryPlaces(ctx, canteenID)
	if err != nil {
		return nil, err
	}
	active := make([]models.DeliveryPlace, 0, len(places))
	for _, p := range places {
		if activeOn(p.BeginDate, p.EndDate, asOf) {
			active = append(active, p)
		}
	}
	return active, nil
}

// CompleteAuthorization binds the pending handle and the chosen place.
func (s *PermissionService) CompleteAuthorization(ctx context.Context, auth *AuthState, placeID uint, asOf time.Time) (*models.DeliveryPlace, error) {
	if auth == nil {
		return nil, ErrInvalidState
	}
	place, err := s.checkPlace(ctx, auth.CanteenIDs, placeID, asOf)
	if err != nil {
		return nil, err
	}
	if err := s.store.BindCustomer(ctx, auth.CustomerID, auth.Handle, place.ID); err != nil {
		return nil, err
	}
	return place, nil
}

// ChangeDeliveryPlace moves an authorized customer to another place.
func (s *PermissionService) ChangeDeliveryPlace(ctx context.Context, handle int64, placeID uint, asOf time.Time) (*models.DeliveryPlace, error) {
	customer, canteens, err := s.ResolveCustomer(ctx, Identity{Handle: &handle}, asOf)
	if err != nil {
		return nil, err
	}
	place, err := s.checkPlace(ctx, canteens, placeID, asOf)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateCustomerPlace(ctx, customer.ID, place.ID); err != nil {
		return nil, err
	}
	return place, nil
}

func (s *PermissionService) checkPlace(ctx context.Context, canteenIDs []uint, placeID uint, asOf time.Time) (*models.DeliveryPlace, error) {
	place, err := s.store.GetDeliveryPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if place == nil || !slices.Contains(canteenIDs, place.CanteenID) || !activeOn(place.BeginDate, place.EndDate, asOf) {
		return nil, ErrUnknownDeliveryPlace
	}
	return place, nil
}
