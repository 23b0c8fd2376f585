package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/kendall-kelly/canteen-orders/config"
	"github.com/kendall-kelly/canteen-orders/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q.", env)
	}
}

// SetupTestDB opens a fresh in-memory SQLite database with every table migrated.
// The pool is pinned to one connection so the whole test sees the same database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

// Seed holds the rows created by SeedCanteen.
type Seed struct {
	Canteen    models.Canteen
	Hall       models.DeliveryPlace
	Customer   models.Customer
	Permission models.CustomerPermission
	Lunch      models.Menu
	Positions  []models.MenuPosition
}

// SeedHandle is the chat handle bound to the seeded customer.
const SeedHandle int64 = 555

// SeedPhone is the seeded customer's phone number.
const SeedPhone = "+79856254915"

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func fixed(qty int) *int {
	return &qty
}

// SeedCanteen creates one canteen with a delivery place, an authorized
// customer and a lunch menu that accepts orders for an hour around now.
// Borscht and Bread form the fixed complex.
func SeedCanteen(t *testing.T, db *gorm.DB, now time.Time) *Seed {
	t.Helper()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	s := &Seed{}

	create := func(v interface{}) {
		require.NoError(t, db.Omit(clause.Associations).Create(v).Error)
	}

	s.Canteen = models.Canteen{Name: "Main Canteen"}
	create(&s.Canteen)

	s.Hall = models.DeliveryPlace{Name: "Hall", BeginDate: today.AddDate(0, 0, -7), CanteenID: s.Canteen.ID}
	create(&s.Hall)

	handle := SeedHandle
	s.Customer = models.Customer{PhoneNumber: SeedPhone, Handle: &handle, PlaceID: &s.Hall.ID}
	create(&s.Customer)

	s.Permission = models.CustomerPermission{CustomerID: s.Customer.ID, CanteenID: s.Canteen.ID, BeginDate: today.AddDate(0, 0, -1)}
	create(&s.Permission)

	s.Lunch = models.Menu{
		Name:       "Lunch",
		MealType:   "lunch",
		Date:       today,
		OrderBegin: now.Add(-time.Hour),
		OrderEnd:   now.Add(time.Hour),
		CanteenID:  s.Canteen.ID,
	}
	create(&s.Lunch)

	s.Positions = []models.MenuPosition{
		{Name: "Borscht", Cost: price("120.00"), FixedQty: fixed(1), MenuID: s.Lunch.ID},
		{Name: "Bread", Cost: price("5.50"), FixedQty: fixed(2), MenuID: s.Lunch.ID},
		{Name: "Cutlet", Cost: price("150.00"), MenuID: s.Lunch.ID},
		{Name: "Water", MenuID: s.Lunch.ID},
	}
	for i := range s.Positions {
		create(&s.Positions[i])
	}
	return s
}
