package services

import "github.com/campuscarry/campuscarry-api/models"

// IsParty reports whether userID is one of the two users bound to the match:
// the order's creator or the offer's deliverer. The match must have Order and Offer loaded.
func IsParty(match *models.Match, userID uint) bool {
	return match.Order.CreatorID == userID || match.Offer.DelivererID == userID
}

// Counterparty returns the other party of the match relative to userID.
// ok is false when userID is not a party.
func Counterparty(match *models.Match, userID uint) (uint, bool) {
	switch userID {
	case match.Order.CreatorID:
		return match.Offer.DelivererID, true
	case match.Offer.DelivererID:
		return match.Order.CreatorID, true
	}
	return 0, false
}
