package services

import (
	"context"
	"strings"
	"time"

	"github.com/campuscarry/campuscarry-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateOrderInput holds the fields a buyer supplies for a new order
type CreateOrderInput struct {
	Title               string
	Description         string
	PickupLocation      string
	DeliveryLocation    string
	Budget              float64
	Deadline            *time.Time
	SpecialInstructions *string
}

// UpdateOrderInput is a partial edit; nil fields are left unchanged
type UpdateOrderInput struct {
	Title               *string
	Description         *string
	PickupLocation      *string
	DeliveryLocation    *string
	Budget              *float64
	Deadline            *time.Time
	SpecialInstructions *string
	Status              *models.OrderStatus
}

// OrderFilter narrows the public order listing
type OrderFilter struct {
	Statuses []models.OrderStatus
	Campus   string
}

// defaultOrderStatuses are the orders a browsing deliverer can still act on
var defaultOrderStatuses = []models.OrderStatus{models.OrderStatusActive, models.OrderStatusMatched}

// OrderService manages the buyer side of the marketplace
type OrderService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOrderService(db *gorm.DB, logger *zap.Logger) *OrderService {
	return &OrderService{db: db, logger: logger}
}

// withOrderMatches preloads the proposed matches with each offer's deliverer
func withOrderMatches(db *gorm.DB) *gorm.DB {
	return db.Preload("Matches", newestFirst).Preload("Matches.Offer.Deliverer", models.UserSummary)
}

func (s *OrderService) Create(ctx context.Context, creatorID uint, in CreateOrderInput) (*models.Order, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" ||
		strings.TrimSpace(in.PickupLocation) == "" || strings.TrimSpace(in.DeliveryLocation) == "" {
		return nil, invalidInput("Missing required fields")
	}
	if in.Budget <= 0 {
		return nil, invalidInput("Budget must be greater than zero")
	}

	order := models.Order{
		CreatorID:           creatorID,
		Title:               in.Title,
		Description:         in.Description,
		PickupLocation:      in.PickupLocation,
		DeliveryLocation:    in.DeliveryLocation,
		Budget:              in.Budget,
		Deadline:            in.Deadline,
		SpecialInstructions: in.SpecialInstructions,
		Status:              models.OrderStatusActive,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		return nil, recordFailure(s.logger, "create_order", unexpected("failed to create order", err))
	}
	return s.Get(ctx, order.ID)
}

// List returns open orders, newest first. Without a status filter it shows ACTIVE and MATCHED orders.
func (s *OrderService) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = defaultOrderStatuses
	}

	db := s.db.WithContext(ctx)
	q := db.Where("status IN ?", statuses).
		Preload("Creator", models.UserSummary).
		Scopes(newestFirst)
	if filter.Campus != "" {
		q = q.Where("creator_id IN (?)", db.Model(&models.User{}).Select("id").Where("campus = ?", filter.Campus))
	}

	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, recordFailure(s.logger, "list_orders", unexpected("failed to list orders", err))
	}
	return orders, nil
}

// ListByCreator returns every order a user posted with its proposed matches
func (s *OrderService) ListByCreator(ctx context.Context, creatorID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Preload("Creator", models.UserSummary).
		Scopes(withOrderMatches, newestFirst).
		Find(&orders).Error
	if err != nil {
		return nil, recordFailure(s.logger, "list_my_orders", unexpected("failed to list orders", err))
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, orderID uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Creator", models.UserSummary).
		Scopes(withOrderMatches).
		First(&order, orderID).Error
	if err != nil {
		return nil, recordFailure(s.logger, "get_order", lookupError("Order", err))
	}
	return &order, nil
}

// Update applies a partial edit by the order's creator. The creator may only move the order
// between DRAFT, ACTIVE and CANCELLED, and only before it is matched.
func (s *OrderService) Update(ctx context.Context, orderID, actorID uint, in UpdateOrderInput) (*models.Order, error) {
	db := s.db.WithContext(ctx)

	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return nil, recordFailure(s.logger, "update_order", lookupError("Order", err))
	}
	if order.CreatorID != actorID {
		return nil, forbidden("Not authorized to modify this order")
	}

	updates := map[string]interface{}{}
	setText := func(column string, v *string) error {
		if v == nil {
			return nil
		}
		if strings.TrimSpace(*v) == "" {
			return invalidInput("%s cannot be empty", column)
		}
		updates[column] = *v
		return nil
	}
	for column, v := range map[string]*string{
		"title":             in.Title,
		"description":       in.Description,
		"pickup_location":   in.PickupLocation,
		"delivery_location": in.DeliveryLocation,
	} {
		if err := setText(column, v); err != nil {
			return nil, err
		}
	}
	if in.Budget != nil {
		if *in.Budget <= 0 {
			return nil, invalidInput("Budget must be greater than zero")
		}
		updates["budget"] = *in.Budget
	}
	if in.Deadline != nil {
		updates["deadline"] = *in.Deadline
	}
	if in.SpecialInstructions != nil {
		updates["special_instructions"] = *in.SpecialInstructions
	}
	if in.Status != nil {
		if !in.Status.Valid() || !in.Status.OwnerEditable() {
			return nil, invalidInput("Status %q cannot be set directly", *in.Status)
		}
		if !order.Status.OwnerEditable() || order.Status == models.OrderStatusCancelled {
			return nil, preconditionFailed("Order is %s and its status can no longer be changed", order.Status)
		}
		updates["status"] = *in.Status
	}

	if len(updates) > 0 {
		q := db.Model(&models.Order{}).Where("id = ?", order.ID)
		if in.Status != nil {
			// a match may have claimed the order since it was read
			q = q.Where("status = ?", order.Status)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return nil, recordFailure(s.logger, "update_order", unexpected("failed to update order", res.Error))
		}
		if res.RowsAffected == 0 {
			return nil, conflict("Order was modified by another request, reload and retry", nil)
		}
	}
	return s.Get(ctx, order.ID)
}

// Delete removes an order that was never matched
func (s *OrderService) Delete(ctx context.Context, orderID, actorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return recordFailure(s.logger, "delete_order", lookupError("Order", err))
		}
		if order.CreatorID != actorID {
			return forbidden("Not authorized to delete this order")
		}

		var matches int64
		if err := tx.Model(&models.Match{}).Where("order_id = ?", order.ID).Count(&matches).Error; err != nil {
			return recordFailure(s.logger, "delete_order", unexpected("failed to count matches", err))
		}
		if matches > 0 {
			return conflict("Order has matches and cannot be deleted; cancel it instead", nil)
		}

		if err := tx.Delete(&order).Error; err != nil {
			return recordFailure(s.logger, "delete_order", unexpected("failed to delete order", err))
		}
		return nil
	})
}
