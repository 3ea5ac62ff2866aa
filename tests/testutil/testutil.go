package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/campuscarry/campuscarry-api/config"
	"github.com/campuscarry/campuscarry-api/events"
	"github.com/campuscarry/campuscarry-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory sqlite database with every table migrated.
// A single connection keeps the in-memory database alive and shared across queries.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user whose token subject is "test|<name>"
func CreateUser(t *testing.T, db *gorm.DB, name string) models.User {
	t.Helper()

	user := models.User{
		Subject:        SubjectFor(name),
		Name:           name,
		Email:          name + "@campus.test",
		RolePreference: models.RoleBoth,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", name, err)
	}
	return user
}

// SubjectFor is the token subject CreateUser assigns to name
func SubjectFor(name string) string {
	return "test|" + name
}

// CreateOrder inserts an ACTIVE order with a 10.00 budget
func CreateOrder(t *testing.T, db *gorm.DB, creator models.User) models.Order {
	t.Helper()

	order := models.Order{
		CreatorID:        creator.ID,
		Title:            "Textbooks from the bookstore",
		Description:      "Two chemistry books, already paid for",
		PickupLocation:   "Campus Bookstore",
		DeliveryLocation: "North Hall 214",
		Budget:           10.00,
		Status:           models.OrderStatusActive,
	}
	if err := db.Omit("Creator").Create(&order).Error; err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}
	return order
}

// CreateOffer inserts an ACTIVE offer for a two hour trip starting tomorrow
func CreateOffer(t *testing.T, db *gorm.DB, deliverer models.User) models.DeliveryOffer {
	t.Helper()

	departure := time.Now().Add(24 * time.Hour).Truncate(time.Second)
	offer := models.DeliveryOffer{
		DelivererID:       deliverer.ID,
		DepartureTime:     departure,
		ReturnTime:        departure.Add(2 * time.Hour),
		DepartureLocation: "North Hall",
		ReturnLocation:    "North Hall",
		MaxCapacity:       2,
		Status:            models.OfferStatusActive,
	}
	if err := db.Omit("Deliverer").Create(&offer).Error; err != nil {
		t.Fatalf("Failed to create offer: %v", err)
	}
	return offer
}

// CreateMatch inserts a match directly in the given status, bypassing the lifecycle rules
func CreateMatch(t *testing.T, db *gorm.DB, order models.Order, offer models.DeliveryOffer, status models.MatchStatus) models.Match {
	t.Helper()

	match := models.Match{
		OrderID:   order.ID,
		OfferID:   offer.ID,
		Status:    status,
		MatchedAt: time.Now(),
	}
	if status == models.MatchStatusCompleted {
		now := time.Now()
		match.CompletedAt = &now
	}
	if err := db.Omit("Order", "Offer").Create(&match).Error; err != nil {
		t.Fatalf("Failed to create match: %v", err)
	}
	return match
}

// RecordingNotifier keeps every published event for assertions
type RecordingNotifier struct {
	mu     sync.Mutex
	events []events.Event
	Err    error
}

func (r *RecordingNotifier) Publish(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.Err
}

// Events returns a copy of the published events
func (r *RecordingNotifier) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}
