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

type CreateOfferInput struct {
	DepartureTime     time.Time
	ReturnTime        time.Time
	DepartureLocation string
	ReturnLocation    string
	MaxCapacity       int // 0 means the default of one item
	ServiceFee        *float64
}

type UpdateOfferInput struct {
	DepartureTime     *time.Time
	ReturnTime        *time.Time
	DepartureLocation *string
	ReturnLocation    *string
	MaxCapacity       *int
	ServiceFee        *float64
	Status            *models.OfferStatus
}

type OfferFilter struct {
	Statuses []models.OfferStatus
	Campus   string
}

// OfferService manages the deliverer side of the marketplace
type OfferService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOfferService(db *gorm.DB, logger *zap.Logger) *OfferService {
	return &OfferService{db: db, logger: logger}
}

func withOfferMatches(db *gorm.DB) *gorm.DB {
	return db.Preload("Matches", newestFirst).Preload("Matches.Order.Creator", models.UserSummary)
}

func validateTrip(departure, ret time.Time) error {
	if departure.IsZero() || ret.IsZero() {
		return invalidInput("Missing required fields")
	}
	if !ret.After(departure) {
		return invalidInput("Return time must be after departure time")
	}
	return nil
}

func (s *OfferService) Create(ctx context.Context, delivererID uint, in CreateOfferInput) (*models.DeliveryOffer, error) {
	if strings.TrimSpace(in.DepartureLocation) == "" || strings.TrimSpace(in.ReturnLocation) == "" {
		return nil, invalidInput("Missing required fields")
	}
	if err := validateTrip(in.DepartureTime, in.ReturnTime); err != nil {
		return nil, err
	}
	if in.MaxCapacity == 0 {
		in.MaxCapacity = 1
	}
	if in.MaxCapacity < 0 {
		return nil, invalidInput("Max capacity must be positive")
	}
	if in.ServiceFee != nil && *in.ServiceFee < 0 {
		return nil, invalidInput("Service fee cannot be negative")
	}

	offer := models.DeliveryOffer{
		DelivererID:       delivererID,
		DepartureTime:     in.DepartureTime,
		ReturnTime:        in.ReturnTime,
		DepartureLocation: in.DepartureLocation,
		ReturnLocation:    in.ReturnLocation,
		MaxCapacity:       in.MaxCapacity,
		ServiceFee:        in.ServiceFee,
		Status:            models.OfferStatusActive,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&offer).Error; err != nil {
		return nil, recordFailure(s.logger, "create_offer", unexpected("failed to create offer", err))
	}
	return s.Get(ctx, offer.ID)
}

// List returns offers newest first; ACTIVE only unless a status filter is given
func (s *OfferService) List(ctx context.Context, filter OfferFilter) ([]models.DeliveryOffer, error) {
	statuses := filter.Statuses
	if len(statuses) == 0 {
		statuses = []models.OfferStatus{models.OfferStatusActive}
	}

	db := s.db.WithContext(ctx)
	q := db.Where("status IN ?", statuses).
		Preload("Deliverer", models.UserSummary).
		Scopes(newestFirst)
	if filter.Campus != "" {
		q = q.Where("deliverer_id IN (?)", db.Model(&models.User{}).Select("id").Where("campus = ?", filter.Campus))
	}

	offers := []models.DeliveryOffer{}
	if err := q.Find(&offers).Error; err != nil {
		return nil, recordFailure(s.logger, "list_offers", unexpected("failed to list offers", err))
	}
	return offers, nil
}

func (s *OfferService) ListByDeliverer(ctx context.Context, delivererID uint) ([]models.DeliveryOffer, error) {
	offers := []models.DeliveryOffer{}
	err := s.db.WithContext(ctx).
		Where("deliverer_id = ?", delivererID).
		Preload("Deliverer", models.UserSummary).
		Scopes(withOfferMatches, newestFirst).
		Find(&offers).Error
	if err != nil {
		return nil, recordFailure(s.logger, "list_my_offers", unexpected("failed to list offers", err))
	}
	return offers, nil
}

func (s *OfferService) Get(ctx context.Context, offerID uint) (*models.DeliveryOffer, error) {
	var offer models.DeliveryOffer
	err := s.db.WithContext(ctx).
		Preload("Deliverer", models.UserSummary).
		Scopes(withOfferMatches).
		First(&offer, offerID).Error
	if err != nil {
		return nil, recordFailure(s.logger, "get_offer", lookupError("Offer", err))
	}
	return &offer, nil
}

// Update applies a partial edit by the deliverer. Status may only be toggled between
// ACTIVE and CANCELLED while the offer is not in progress.
func (s *OfferService) Update(ctx context.Context, offerID, actorID uint, in UpdateOfferInput) (*models.DeliveryOffer, error) {
	db := s.db.WithContext(ctx)

	var offer models.DeliveryOffer
	if err := db.First(&offer, offerID).Error; err != nil {
		return nil, recordFailure(s.logger, "update_offer", lookupError("Offer", err))
	}
	if offer.DelivererID != actorID {
		return nil, forbidden("Not authorized to modify this offer")
	}

	updates := map[string]interface{}{}
	departure, ret := offer.DepartureTime, offer.ReturnTime
	if in.DepartureTime != nil {
		departure = *in.DepartureTime
		updates["departure_time"] = departure
	}
	if in.ReturnTime != nil {
		ret = *in.ReturnTime
		updates["return_time"] = ret
	}
	if err := validateTrip(departure, ret); err != nil {
		return nil, err
	}
	if in.DepartureLocation != nil {
		if strings.TrimSpace(*in.DepartureLocation) == "" {
			return nil, invalidInput("Departure location cannot be empty")
		}
		updates["departure_location"] = *in.DepartureLocation
	}
	if in.ReturnLocation != nil {
		if strings.TrimSpace(*in.ReturnLocation) == "" {
			return nil, invalidInput("Return location cannot be empty")
		}
		updates["return_location"] = *in.ReturnLocation
	}
	if in.MaxCapacity != nil {
		if *in.MaxCapacity <= 0 {
			return nil, invalidInput("Max capacity must be positive")
		}
		updates["max_capacity"] = *in.MaxCapacity
	}
	if in.ServiceFee != nil {
		if *in.ServiceFee < 0 {
			return nil, invalidInput("Service fee cannot be negative")
		}
		updates["service_fee"] = *in.ServiceFee
	}
	if in.Status != nil {
		if !in.Status.Valid() || !in.Status.OwnerEditable() {
			return nil, invalidInput("Status %q cannot be set directly", *in.Status)
		}
		if offer.Status != models.OfferStatusActive {
			return nil, preconditionFailed("Offer is %s and its status can no longer be changed", offer.Status)
		}
		updates["status"] = *in.Status
	}

	if len(updates) > 0 {
		q := db.Model(&models.DeliveryOffer{}).Where("id = ?", offer.ID)
		if in.Status != nil {
			// a match may have claimed the offer since it was read
			q = q.Where("status = ?", offer.Status)
		}
		res := q.Updates(updates)
		if res.Error != nil {
			return nil, recordFailure(s.logger, "update_offer", unexpected("failed to update offer", res.Error))
		}
		if res.RowsAffected == 0 {
			return nil, conflict("Offer was modified by another request, reload and retry", nil)
		}
	}
	return s.Get(ctx, offer.ID)
}

// Delete removes an offer that was never matched
func (s *OfferService) Delete(ctx context.Context, offerID, actorID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offer models.DeliveryOffer
		if err := tx.First(&offer, offerID).Error; err != nil {
			return recordFailure(s.logger, "delete_offer", lookupError("Offer", err))
		}
		if offer.DelivererID != actorID {
			return forbidden("Not authorized to delete this offer")
		}

		var matches int64
		if err := tx.Model(&models.Match{}).Where("offer_id = ?", offer.ID).Count(&matches).Error; err != nil {
			return recordFailure(s.logger, "delete_offer", unexpected("failed to count matches", err))
		}
		if matches > 0 {
			return conflict("Offer has matches and cannot be deleted; cancel it instead", nil)
		}

		if err := tx.Delete(&offer).Error; err != nil {
			return recordFailure(s.logger, "delete_offer", unexpected("failed to delete offer", err))
		}
		return nil
	})
}
