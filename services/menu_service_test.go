package services

import (
	"context"
	"testing"
	"time"

	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuIDs(menus []models.Menu) []uint {
	ids := make([]uint, len(menus))
	for i, m := range menus {
		ids[i] = m.ID
	}
	return ids
}

func TestInOrderWindow(t *testing.T) {
	begin := fixtureNow
	end := fixtureNow.Add(time.Hour)
	menu := models.Menu{OrderBegin: begin, OrderEnd: end}

	assert.True(t, InOrderWindow(menu, begin), "window start is inclusive")
	assert.True(t, InOrderWindow(menu, end), "window end is inclusive")
	assert.True(t, InOrderWindow(menu, begin.Add(time.Minute)))
	assert.False(t, InOrderWindow(menu, begin.Add(-time.Second)))
	assert.False(t, InOrderWindow(menu, end.Add(time.Second)))
}

func TestValidMenus(t *testing.T) {
	f := newFixture(t)
	ms := NewMenuService(f.store)
	ctx := context.Background()

	menus, err := ms.ValidMenus(ctx, canteenMain, customerAlice, f.now)
	require.NoError(t, err)
	assert.Equal(t, []uint{menuLunch, menuDinner}, menuIDs(menus), "ordered by date, closed breakfast excluded")
}

func TestValidMenusExcludesAlreadyOrdered(t *testing.T) {
	f := newFixture(t)
	ms := NewMenuService(f.store)
	ctx := context.Background()

	f.store.AddOrder(models.Order{CustomerID: customerAlice, MenuID: menuLunch, PlaceID: placeHall})

	menus, err := ms.ValidMenus(ctx, canteenMain, customerAlice, f.now)
	require.NoError(t, err)
	assert.Equal(t, []uint{menuDinner}, menuIDs(menus))

	menus, err = ms.ValidMenus(ctx, canteenMain, customerBob, f.now)
	require.NoError(t, err)
	assert.Equal(t, []uint{menuLunch, menuDinner}, menuIDs(menus), "other customers are not affected")
}

func TestValidMenusIgnoresExportedOrders(t *testing.T) {
	f := newFixture(t)
	sent := f.now.Add(-time.Minute)
	f.store.AddOrder(models.Order{CustomerID: customerAlice, MenuID: menuLunch, PlaceID: placeHall, SentAt: &sent})

	menus, err := NewMenuService(f.store).ValidMenus(context.Background(), canteenMain, customerAlice, f.now)
	require.NoError(t, err)
	assert.Contains(t, menuIDs(menus), menuLunch)
}

func TestValidMenusNothingOrderable(t *testing.T) {
	f := newFixture(t)
	later := f.now.Add(24 * time.Hour)

	_, err := NewMenuService(f.store).ValidMenus(context.Background(), canteenMain, customerAlice, later)
	assert.ErrorIs(t, err, ErrNoValidMenus)
}

func TestCheckOrderable(t *testing.T) {
	f := newFixture(t)
	ms := NewMenuService(f.store)
	ctx := context.Background()

	menu, err := ms.CheckOrderable(ctx, menuLunch, canteenMain, customerAlice, f.now)
	require.NoError(t, err)
	assert.Len(t, menu.Positions, 7)

	tests := []struct {
		name      string
		menuID    uint
		canteenID uint
	}{
		{"closed window", menuBreakfast, canteenMain},
		{"other canteen", menuNorth, canteenMain},
		{"missing menu", 404, canteenMain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ms.CheckOrderable(ctx, tt.menuID, tt.canteenID, customerAlice, f.now)
			assert.ErrorIs(t, err, ErrStaleMenu)
		})
	}
}
