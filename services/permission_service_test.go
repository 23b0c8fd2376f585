package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsActivePermission(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC) }
	asOf := time.Date(2026, 10, 16, 18, 30, 0, 0, time.UTC)
	end := func(d int) *time.Time { v := day(d); return &v }

	tests := []struct {
		name     string
		begin    time.Time
		end      *time.Time
		expected bool
	}{
		{"open ended started earlier", day(1), nil, true},
		{"starts today", day(16), nil, true},
		{"starts tomorrow", day(17), nil, false},
		{"ends today", day(1), end(16), true},
		{"ended yesterday", day(1), end(15), false},
		{"single day grant", day(16), end(16), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.CustomerPermission{BeginDate: tt.begin, EndDate: tt.end}
			assert.Equal(t, tt.expected, IsActivePermission(p, asOf))
		})
	}
}

func TestValidCanteens(t *testing.T) {
	f := newFixture(t)
	ps := NewPermissionService(f.store)
	ctx := context.Background()

	f.store.AddPermission(models.CustomerPermission{ID: 10, CustomerID: customerAlice, CanteenID: canteenNorth, BeginDate: f.now})
	f.store.AddPermission(models.CustomerPermission{ID: 11, CustomerID: customerAlice, CanteenID: canteenMain, BeginDate: f.now})

	ids, err := ps.ValidCanteens(ctx, customerAlice, f.now)
	require.NoError(t, err)
	assert.Equal(t, []uint{canteenMain, canteenNorth}, ids, "sorted and without duplicates")

	_, err = ps.ValidCanteens(ctx, customerExpired, f.now)
	assert.ErrorIs(t, err, ErrNoActivePermission)
}

func TestResolveCustomer(t *testing.T) {
	f := newFixture(t)
	ps := NewPermissionService(f.store)
	ctx := context.Background()

	tests := []struct {
		name      string
		identity  Identity
		expectID  uint
		expectErr error
	}{
		{name: "by phone", identity: Identity{Phone: "+79191399333"}, expectID: customerBob},
		{name: "by phone without plus", identity: Identity{Phone: "79191399333"}, expectID: customerBob},
		{name: "by handle", identity: Identity{Handle: int64Ptr(handleAlice)}, expectID: customerAlice},
		{name: "unknown phone", identity: Identity{Phone: "+71111111111"}, expectErr: ErrUnknownCustomer},
		{name: "malformed phone", identity: Identity{Phone: "not a phone"}, expectErr: ErrUnknownCustomer},
		{name: "unknown handle", identity: Identity{Handle: int64Ptr(1)}, expectErr: ErrUnknownCustomer},
		{name: "empty identity", identity: Identity{}, expectErr: ErrUnknownCustomer},
		{name: "expired permission", identity: Identity{Handle: int64Ptr(handleExpired)}, expectErr: ErrNoActivePermission},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer, canteens, err := ps.ResolveCustomer(ctx, tt.identity, f.now)
			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectID, customer.ID)
			assert.Equal(t, []uint{canteenMain}, canteens)
		})
	}
}

func TestResolveCustomerKeepsFailureKindsApart(t *testing.T) {
	f := newFixture(t)
	ps := NewPermissionService(f.store)

	_, _, unknown := ps.ResolveCustomer(context.Background(), Identity{Phone: "+71111111111"}, f.now)
	_, _, expired := ps.ResolveCustomer(context.Background(), Identity{Phone: "+70000000000"}, f.now)

	assert.ErrorIs(t, unknown, ErrUnknownCustomer)
	assert.NotErrorIs(t, unknown, ErrNoActivePermission)
	assert.ErrorIs(t, expired, ErrNoActivePermission)
	assert.NotErrorIs(t, expired, ErrUnknownCustomer)
}

func TestResolveCustomerStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.Err = errors.New("connection refused")
	ps := NewPermissionService(f.store)

	_, _, err := ps.ResolveCustomer(context.Background(), Identity{Handle: int64Ptr(handleAlice)}, f.now)
	require.Error(t, err)
	_, typed := AsEngineError(err)
	assert.False(t, typed, "infrastructure failures are not engine errors")
}

func TestAuthorizationFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := f.svc.Resume(handleNew, nil)

	auth, err := conv.StartAuthorization(ctx, "79191399333")
	require.NoError(t, err)
	assert.Equal(t, customerBob, auth.CustomerID)
	assert.Equal(t, handleNew, auth.Handle)
	assert.Equal(t, []uint{canteenMain}, auth.CanteenIDs)
	assert.NotNil(t, conv.State().Auth)

	places, err := conv.DeliveryPlaces(ctx, 0)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, placeHall, places[0].ID)

	_, err = conv.DeliveryPlaces(ctx, canteenNorth)
	assert.ErrorIs(t, err, ErrNoActivePermission)

	_, err = conv.CompleteAuthorization(ctx, placeNorth)
	assert.ErrorIs(t, err, ErrUnknownDeliveryPlace)

	place, err := conv.CompleteAuthorization(ctx, placeFixed)
	require.NoError(t, err)
	assert.Equal(t, placeFixed, place.ID)
	assert.Nil(t, conv.State().Auth)

	bob := f.store.Customer(customerBob)
	require.NotNil(t, bob.Handle)
	assert.Equal(t, handleNew, *bob.Handle)
	require.NotNil(t, bob.PlaceID)
	assert.Equal(t, placeFixed, *bob.PlaceID)
}

func TestCompleteAuthorizationWithoutPhoneStep(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Resume(handleNew, nil).CompleteAuthorization(context.Background(), placeHall)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestRebindingHandleReleasesPreviousCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := f.svc.Resume(handleAlice, nil)

	_, err := conv.StartAuthorization(ctx, "+79191399333")
	require.NoError(t, err)
	_, err = conv.CompleteAuthorization(ctx, placeHall)
	require.NoError(t, err)

	assert.Nil(t, f.store.Customer(customerAlice).Handle)
	assert.Equal(t, handleAlice, *f.store.Customer(customerBob).Handle)
}

func TestChangeDeliveryPlace(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	conv := f.svc.Resume(handleAlice, nil)

	places, err := conv.DeliveryPlaces(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, places, 2)

	place, err := conv.ChangeDeliveryPlace(ctx, placeFixed)
	require.NoError(t, err)
	assert.True(t, place.FixedComplex)
	assert.Equal(t, placeFixed, *f.store.Customer(customerAlice).PlaceID)

	_, err = conv.ChangeDeliveryPlace(ctx, 404)
	assert.ErrorIs(t, err, ErrUnknownDeliveryPlace)

	_, err = f.svc.Resume(handleNew, nil).ChangeDeliveryPlace(ctx, placeHall)
	assert.ErrorIs(t, err, ErrUnknownCustomer)
}

func TestDeliveryPlacesSkipsClosedPlaces(t *testing.T) {
	f := newFixture(t)
	closed := f.now.AddDate(0, 0, -2)
	f.store.AddPlace(models.DeliveryPlace{ID: 12, Name: "Old Hall", BeginDate: f.now.AddDate(0, -1, 0), EndDate: &closed, CanteenID: canteenMain})

	places, err := f.svc.Resume(handleAlice, nil).DeliveryPlaces(context.Background(), canteenMain)
	require.NoError(t, err)
	for _, p := range places {
		assert.NotEqual(t, uint(12), p.ID)
	}
}

func TestCanteens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.store.AddPermission(models.CustomerPermission{ID: 20, CustomerID: customerBob, CanteenID: canteenNorth, BeginDate: f.now})
	conv := f.svc.Resume(handleNew, nil)

	_, err := conv.StartAuthorization(ctx, "+79191399333")
	require.NoError(t, err)

	canteens, err := conv.Canteens(ctx)
	require.NoError(t, err)
	require.Len(t, canteens, 2)
	assert.Equal(t, "Main Canteen", canteens[0].Name)
	assert.Equal(t, "North Canteen", canteens[1].Name)

	places, err := conv.DeliveryPlaces(ctx, canteens[1].ID)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, placeNorth, places[0].ID)
}

func TestCanteensForBoundChat(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	canteens, err := f.svc.Resume(handleAlice, nil).Canteens(ctx)
	require.NoError(t, err)
	require.Len(t, canteens, 1)
	assert.Equal(t, canteenMain, canteens[0].ID)

	_, err = f.svc.Resume(handleExpired, nil).Canteens(ctx)
	assert.ErrorIs(t, err, ErrNoActivePermission)

	_, err = f.svc.Resume(handleNew, nil).Canteens(ctx)
	assert.ErrorIs(t, err, ErrUnknownCustomer)
}

func TestCanteensSkipsMissingRows(t *testing.T) {
	f := newFixture(t)
	ps := NewPermissionService(f.store)

	canteens, err := ps.Canteens(context.Background(), []uint{canteenMain, 99})
	require.NoError(t, err)
	require.Len(t, canteens, 1)
	assert.Equal(t, canteenMain, canteens[0].ID)

	_, err = ps.Canteens(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoActivePermission)

	f.store.Err = errors.New("connection reset")
	_, err = ps.Canteens(context.Background(), []uint{canteenMain})
	require.Error(t, err)
	_, typed := AsEngineError(err)
	assert.False(t, typed)
}
