package models

import "fmt"

// OrderStatus is the lifecycle state of an Order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "DRAFT"
	OrderStatusActive     OrderStatus = "ACTIVE"
	OrderStatusMatched    OrderStatus = "MATCHED"
	OrderStatusInProgress OrderStatus = "IN_PROGRESS"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// Valid reports whether s is a known order status
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusDraft, OrderStatusActive, OrderStatusMatched,
		OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// OwnerEditable reports whether the order's creator may set this status directly.
// The remaining states are driven by the match lifecycle.
func (s OrderStatus) OwnerEditable() bool {
	return s == OrderStatusDraft || s == OrderStatusActive || s == OrderStatusCancelled
}

// Matchable reports whether an order in state s can take a new match.
// Several offers may be proposed for one order, so MATCHED still qualifies.
func (s OrderStatus) Matchable() bool {
	return s == OrderStatusActive || s == OrderStatusMatched
}

// OfferStatus is the lifecycle state of a DeliveryOffer
type OfferStatus string

const (
	OfferStatusActive     OfferStatus = "ACTIVE"
	OfferStatusInProgress OfferStatus = "IN_PROGRESS"
	OfferStatusCompleted  OfferStatus = "COMPLETED"
	OfferStatusCancelled  OfferStatus = "CANCELLED"
)

// Valid reports whether s is a known offer status
func (s OfferStatus) Valid() bool {
	switch s {
	case OfferStatusActive, OfferStatusInProgress, OfferStatusCompleted, OfferStatusCancelled:
		return true
	}
	return false
}

// OwnerEditable reports whether the deliverer may set this status directly
func (s OfferStatus) OwnerEditable() bool {
	return s == OfferStatusActive || s == OfferStatusCancelled
}

// Matchable reports whether an offer in state s can carry another order
func (s OfferStatus) Matchable() bool {
	return s == OfferStatusActive || s == OfferStatusInProgress
}

// MatchStatus is the lifecycle state of a Match
type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "PENDING"
	MatchStatusAccepted  MatchStatus = "ACCEPTED"
	MatchStatusRejected  MatchStatus = "REJECTED"
	MatchStatusCompleted MatchStatus = "COMPLETED"
	MatchStatusCancelled MatchStatus = "CANCELLED"
)

// matchTransitions lists the legal next states for every non-terminal match state
var matchTransitions = map[MatchStatus][]MatchStatus{
	MatchStatusPending:  {MatchStatusAccepted, MatchStatusRejected, MatchStatusCancelled},
	MatchStatusAccepted: {MatchStatusCompleted, MatchStatusCancelled},
}

// ParseMatchStatus converts raw input into a MatchStatus
func ParseMatchStatus(raw string) (MatchStatus, error) {
	s := MatchStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("invalid match status %q", raw)
	}
	return s, nil
}

// Valid reports whether s is a known match status
func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusAccepted, MatchStatusRejected,
		MatchStatusCompleted, MatchStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s MatchStatus) IsTerminal() bool {
	return len(matchTransitions[s]) == 0
}

// CanTransitionTo reports whether a match in state s may move to next
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	for _, allowed := range matchTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// RolePreference records whether a user mainly posts orders, offers, or both
type RolePreference string

const (
	RoleBuyer     RolePreference = "BUYER"
	RoleDeliverer RolePreference = "DELIVERER"
	RoleBoth      RolePreference = "BOTH"
)

// Valid reports whether r is a known role preference
func (r RolePreference) Valid() bool {
	return r == RoleBuyer || r == RoleDeliverer || r == RoleBoth
}
