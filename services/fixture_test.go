package services

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/shopspring/decimal"
)

const (
	handleAlice   int64 = 555
	handleExpired int64 = 777
	handleNew     int64 = 900

	customerAlice   uint = 100
	customerBob     uint = 101
	customerExpired uint = 102

	canteenMain  uint = 1
	canteenNorth uint = 2

	placeHall  uint = 10
	placeFixed uint = 11
	placeNorth uint = 20

	menuLunch     uint = 1
	menuDinner    uint = 2
	menuBreakfast uint = 3
	menuNorth     uint = 4
)

var fixtureNow = time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *MockOrderStore
	events *MockEventPublisher
	svc    *OrderService
	now    time.Time
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int {
	return &v
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func uintPtr(v uint) *uint {
	return &v
}

func int64Ptr(v int64) *int64 {
	return &v
}

// lunchPositions has seven priced positions; 1 and 2 form the fixed complex.
func lunchPositions() []models.MenuPosition {
	return []models.MenuPosition{
		{ID: 1, Name: "Borscht", Cost: price("120.00"), FixedQty: intPtr(1), MenuID: menuLunch},
		{ID: 2, Name: "Bread", Cost: price("5.50"), FixedQty: intPtr(2), MenuID: menuLunch},
		{ID: 3, Name: "Cutlet", Cost: price("150.00"), MenuID: menuLunch},
		{ID: 4, Name: "Buckwheat", Cost: price("60.00"), MenuID: menuLunch},
		{ID: 5, Name: "Salad", Cost: price("80.25"), MenuID: menuLunch},
		{ID: 6, Name: "Compote", Cost: price("30.00"), MenuID: menuLunch},
		{ID: 7, Name: "Water", MenuID: menuLunch},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := fixtureNow
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)

	store := NewMockOrderStore()
	store.AddCanteen(models.Canteen{ID: canteenMain, Name: "Main Canteen"})
	store.AddCanteen(models.Canteen{ID: canteenNorth, Name: "North Canteen"})

	store.AddPlace(models.DeliveryPlace{ID: placeHall, Name: "Hall", BeginDate: lastWeek, CanteenID: canteenMain})
	store.AddPlace(models.DeliveryPlace{ID: placeFixed, Name: "Workshop", BeginDate: lastWeek, FixedComplex: true, CanteenID: canteenMain})
	store.AddPlace(models.DeliveryPlace{ID: placeNorth, Name: "North Hall", BeginDate: lastWeek, CanteenID: canteenNorth})

	store.AddCustomer(models.Customer{ID: customerAlice, PhoneNumber: "+79856254915", Handle: int64Ptr(handleAlice), PlaceID: uintPtr(placeHall)})
	store.AddCustomer(models.Customer{ID: customerBob, PhoneNumber: "+79191399333"})
	store.AddCustomer(models.Customer{ID: customerExpired, PhoneNumber: "+70000000000", Handle: int64Ptr(handleExpired), PlaceID: uintPtr(placeHall)})

	store.AddPermission(models.CustomerPermission{ID: 1, CustomerID: customerAlice, CanteenID: canteenMain, BeginDate: yesterday})
	store.AddPermission(models.CustomerPermission{ID: 2, CustomerID: customerBob, CanteenID: canteenMain, BeginDate: lastWeek})
	expired := yesterday
	store.AddPermission(models.CustomerPermission{ID: 3, CustomerID: customerExpired, CanteenID: canteenMain, BeginDate: lastWeek, EndDate: &expired})

	store.AddMenu(models.Menu{
		ID: menuLunch, Name: "Lunch", Date: today, CanteenID: canteenMain,
		OrderBegin: now.Add(-time.Hour), OrderEnd: now.Add(time.Hour),
		Positions: lunchPositions(),
	})
	store.AddMenu(models.Menu{
		ID: menuDinner, Name: "Dinner", Date: today.AddDate(0, 0, 1), CanteenID: canteenMain,
		OrderBegin: now.Add(-time.Hour), OrderEnd: now.Add(5 * time.Hour),
		Positions: []models.MenuPosition{{ID: 8, Name: "Pilaf", Cost: price("210.00"), MenuID: menuDinner}},
	})
	store.AddMenu(models.Menu{
		ID: menuBreakfast, Name: "Breakfast", Date: today, CanteenID: canteenMain,
		OrderBegin: now.Add(-4 * time.Hour), OrderEnd: now.Add(-2 * time.Hour),
		Positions: []models.MenuPosition{{ID: 9, Name: "Porridge", Cost: price("40.00"), MenuID: menuBreakfast}},
	})
	store.AddMenu(models.Menu{
		ID: menuNorth, Name: "North Lunch", Date: today, CanteenID: canteenNorth,
		OrderBegin: now.Add(-time.Hour), OrderEnd: now.Add(time.Hour),
		Positions: []models.MenuPosition{{ID: 10, Name: "Soup", Cost: price("90.00"), MenuID: menuNorth}},
	})

	events := NewMockEventPublisher()
	svc := NewOrderService(store, events, discardLogger(), DefaultPageSize)
	svc.SetClock(func() time.Time { return now })

	return &fixture{store: store, events: events, svc: svc, now: now}
}

// moveAliceToFixedPlace makes Alice order at the fixed complex place.
func (f *fixture) moveAliceToFixedPlace() {
	c := f.store.Customer(customerAlice)
	c.PlaceID = uintPtr(placeFixed)
	f.store.AddCustomer(c)
}
