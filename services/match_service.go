package services

import (
	"context"
	"time"

	"github.com/campuscarry/campuscarry-api/events"
	"github.com/campuscarry/campuscarry-api/metrics"
	"github.com/campuscarry/campuscarry-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchService drives the match lifecycle: pairing an order with an offer,
// moving the match through its states and cascading completion into both listings.
type MatchService struct {
	db       *gorm.DB
	notifier events.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewMatchService(db *gorm.DB, notifier events.Notifier, logger *zap.Logger) *MatchService {
	return &MatchService{
		db:       db,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// withParties preloads the order with its creator and the offer with its deliverer
func withParties(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Order.Creator", models.UserSummary).
		Preload("Offer.Deliverer", models.UserSummary)
}

// withThread preloads the message thread oldest first
func withThread(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Messages", chronological).
		Preload("Messages.Sender", models.UserSummary)
}

func chronological(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("id ASC")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// loadMatch reads a match with just enough of its order and offer to evaluate the party predicate
func loadMatch(tx *gorm.DB, matchID uint) (*models.Match, error) {
	var match models.Match
	if err := tx.Preload("Order").Preload("Offer").First(&match, matchID).Error; err != nil {
		return nil, lookupError("Match", err)
	}
	return &match, nil
}

// CreateMatch pairs an order with an offer. The new match starts PENDING, the order becomes
// MATCHED and the offer IN_PROGRESS, all in one transaction.
func (s *MatchService) CreateMatch(ctx context.Context, orderID, offerID, actorID uint) (*models.Match, error) {
	var matchID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderID).Error; err != nil {
			return lookupError("Order", err)
		}
		var offer models.DeliveryOffer
		if err := tx.First(&offer, offerID).Error; err != nil {
			return lookupError("Offer", err)
		}

		if actorID != order.CreatorID && actorID != offer.DelivererID {
			return forbidden("Only the order's creator or the offer's deliverer can create this match")
		}
		if order.CreatorID == offer.DelivererID {
			return invalidInput("An order cannot be matched with an offer from the same user")
		}
		if !order.Status.Matchable() {
			return preconditionFailed("Order is %s and cannot be matched", order.Status)
		}
		if !offer.Status.Matchable() {
			return preconditionFailed("Offer is %s and cannot be matched", offer.Status)
		}

		match := models.Match{
			OrderID:   order.ID,
			OfferID:   offer.ID,
			Status:    models.MatchStatusPending,
			MatchedAt: s.now(),
		}
		// the unique index on (order_id, offer_id) settles concurrent attempts
		if err := tx.Omit(clause.Associations).Create(&match).Error; err != nil {
			if isUniqueViolation(err) {
				return conflict("Match already exists", err)
			}
			return unexpected("failed to create match", err)
		}

		// both listings must still be in the state checked above
		res := tx.Model(&models.Order{}).Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", models.OrderStatusMatched)
		if res.Error != nil {
			return unexpected("failed to update order status", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflict("Order was modified by another request, reload and retry", nil)
		}
		res = tx.Model(&models.DeliveryOffer{}).Where("id = ? AND status = ?", offer.ID, offer.Status).
			Update("status", models.OfferStatusInProgress)
		if res.Error != nil {
			return unexpected("failed to update offer status", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflict("Offer was modified by another request, reload and retry", nil)
		}

		matchID = match.ID
		return nil
	})
	if err != nil {
		return nil, s.fail("create_match", err)
	}

	metrics.MatchesCreatedTotal.Inc()
	s.logger.Info("match created",
		zap.Uint("match_id", matchID),
		zap.Uint("order_id", orderID),
		zap.Uint("offer_id", offerID),
		zap.Uint("actor_id", actorID),
	)

	match, err := s.hydrate(ctx, matchID, false)
	if err != nil {
		return nil, s.fail("create_match", err)
	}
	s.publish(ctx, events.MatchCreated, match)
	return match, nil
}

// UpdateMatchStatus moves a match to status on behalf of one of its parties.
// Only legal transitions are accepted; COMPLETED also completes the order and the offer.
func (s *MatchService) UpdateMatchStatus(ctx context.Context, matchID uint, status models.MatchStatus, actorID uint) (*models.Match, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		match, err := loadMatch(tx, matchID)
		if err != nil {
			return err
		}
		if !IsParty(match, actorID) {
			return forbidden("Not authorized to update this match")
		}
		next, err := models.ParseMatchStatus(string(status))
		if err != nil {
			return invalidInput("Invalid match status %q", status)
		}
		if match.Status.IsTerminal() {
			return preconditionFailed("Match is already %s and can no longer change", match.Status)
		}
		if !match.Status.CanTransitionTo(next) {
			return preconditionFailed("Cannot change match status from %s to %s", match.Status, next)
		}

		updates := map[string]interface{}{"status": next}
		if next == models.MatchStatusCompleted {
			updates["completed_at"] = s.now()
		}

		// conditional on the status we validated against, so a concurrent change can't be overwritten
		res := tx.Model(&models.Match{}).
			Where("id = ? AND status = ?", match.ID, match.Status).
			Updates(updates)
		if res.Error != nil {
			return unexpected("failed to update match", res.Error)
		}
		if res.RowsAffected == 0 {
			return conflict("Match was modified by another request, reload and retry", nil)
		}

		if next == models.MatchStatusCompleted {
			if err := tx.Model(&models.Order{}).Where("id = ?", match.OrderID).
				Update("status", models.OrderStatusCompleted).Error; err != nil {
				return unexpected("failed to complete order", err)
			}
			if err := tx.Model(&models.DeliveryOffer{}).Where("id = ?", match.OfferID).
				Update("status", models.OfferStatusCompleted).Error; err != nil {
				return unexpected("failed to complete offer", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("update_match_status", err)
	}

	metrics.MatchTransitionsTotal.WithLabelValues(string(status)).Inc()
	s.logger.Info("match status updated",
		zap.Uint("match_id", matchID),
		zap.String("status", string(status)),
		zap.Uint("actor_id", actorID),
	)

	match, err := s.hydrate(ctx, matchID, false)
	if err != nil {
		return nil, s.fail("update_match_status", err)
	}
	s.publish(ctx, events.MatchStatusUpdated, match)
	return match, nil
}

// GetMatch returns a match with both parties and its full message thread
func (s *MatchService) GetMatch(ctx context.Context, matchID uint) (*models.Match, error) {
	match, err := s.hydrate(ctx, matchID, true)
	if err != nil {
		return nil, s.fail("get_match", err)
	}
	return match, nil
}

// GetMatchesForOrder lists every match proposed for an order, newest first
func (s *MatchService) GetMatchesForOrder(ctx context.Context, orderID uint) ([]models.Match, error) {
	return s.list(ctx, "list_matches_for_order", "order_id = ?", orderID)
}

// GetMatchesForOffer lists every match proposed for an offer, newest first
func (s *MatchService) GetMatchesForOffer(ctx context.Context, offerID uint) ([]models.Match, error) {
	return s.list(ctx, "list_matches_for_offer", "offer_id = ?", offerID)
}

// GetMatchesForUser lists the matches where userID created the order or delivers the offer
func (s *MatchService) GetMatchesForUser(ctx context.Context, userID uint) ([]models.Match, error) {
	db := s.db.WithContext(ctx)
	ownOrders := db.Model(&models.Order{}).Select("id").Where("creator_id = ?", userID)
	ownOffers := db.Model(&models.DeliveryOffer{}).Select("id").Where("deliverer_id = ?", userID)
	return s.list(ctx, "list_matches_for_user", "order_id IN (?) OR offer_id IN (?)", ownOrders, ownOffers)
}

func (s *MatchService) list(ctx context.Context, op string, query string, args ...interface{}) ([]models.Match, error) {
	matches := []models.Match{}
	err := s.db.WithContext(ctx).
		Scopes(withParties, newestFirst).
		Where(query, args...).
		Find(&matches).Error
	if err != nil {
		return nil, s.fail(op, unexpected("failed to list matches", err))
	}
	return matches, nil
}

func (s *MatchService) hydrate(ctx context.Context, matchID uint, thread bool) (*models.Match, error) {
	q := s.db.WithContext(ctx).Scopes(withParties)
	if thread {
		q = q.Scopes(withThread)
	}
	var match models.Match
	if err := q.First(&match, matchID).Error; err != nil {
		return nil, lookupError("Match", err)
	}
	return &match, nil
}

// publish is best effort: the data change is already committed
func (s *MatchService) publish(ctx context.Context, name events.Name, match *models.Match) {
	if err := s.notifier.Publish(ctx, events.New(name, match.ID, match)); err != nil {
		s.logger.Warn("failed to publish match event",
			zap.String("event", string(name)),
			zap.Uint("match_id", match.ID),
			zap.Error(err),
		)
	}
}

func (s *MatchService) fail(op string, err error) error {
	return recordFailure(s.logger, op, err)
}

// recordFailure logs and counts unexpected failures; classified ones pass through untouched
func recordFailure(logger *zap.Logger, op string, err error) error {
	if ErrorCode(err) != CodeUnexpected {
		return err
	}
	metrics.OperationErrorsTotal.WithLabelValues(op).Inc()
	logger.Error("operation failed", zap.String("operation", op), zap.Error(err))
	if _, ok := err.(*Error); !ok {
		return unexpected("internal server error", err)
	}
	return err
}
