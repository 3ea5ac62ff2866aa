package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMatchStatus(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    MatchStatus
		wantErr bool
	}{
		{"pending", "PENDING", MatchStatusPending, false},
		{"accepted", "ACCEPTED", MatchStatusAccepted, false},
		{"completed", "COMPLETED", MatchStatusCompleted, false},
		{"lower case is rejected", "accepted", "", true},
		{"empty", "", "", true},
		{"unknown", "SHIPPED", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMatchStatus(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchStatusTransitions(t *testing.T) {
	all := []MatchStatus{
		MatchStatusPending,
		MatchStatusAccepted,
		MatchStatusRejected,
		MatchStatusCompleted,
		MatchStatusCancelled,
	}
	legal := map[MatchStatus]map[MatchStatus]bool{
		MatchStatusPending: {
			MatchStatusAccepted:  true,
			MatchStatusRejected:  true,
			MatchStatusCancelled: true,
		},
		MatchStatusAccepted: {
			MatchStatusCompleted: true,
			MatchStatusCancelled: true,
		},
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[from][to], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestMatchStatusIsTerminal(t *testing.T) {
	assert.False(t, MatchStatusPending.IsTerminal())
	assert.False(t, MatchStatusAccepted.IsTerminal())
	assert.True(t, MatchStatusRejected.IsTerminal())
	assert.True(t, MatchStatusCompleted.IsTerminal())
	assert.True(t, MatchStatusCancelled.IsTerminal())
}

func TestOrderStatusOwnerEditable(t *testing.T) {
	assert.True(t, OrderStatusDraft.OwnerEditable())
	assert.True(t, OrderStatusActive.OwnerEditable())
	assert.True(t, OrderStatusCancelled.OwnerEditable())
	assert.False(t, OrderStatusMatched.OwnerEditable())
	assert.False(t, OrderStatusCompleted.OwnerEditable())
	assert.False(t, OrderStatus("bogus").Valid())
}

func TestOfferStatusOwnerEditable(t *testing.T) {
	assert.True(t, OfferStatusActive.OwnerEditable())
	assert.True(t, OfferStatusCancelled.OwnerEditable())
	assert.False(t, OfferStatusInProgress.OwnerEditable())
	assert.True(t, OfferStatusCompleted.Valid())
}

func TestRolePreferenceValid(t *testing.T) {
	assert.True(t, RoleBoth.Valid())
	assert.True(t, RoleBuyer.Valid())
	assert.True(t, RoleDeliverer.Valid())
	assert.False(t, RolePreference("ADMIN").Valid())
}

func TestListingMatchable(t *testing.T) {
	assert.True(t, OrderStatusActive.Matchable())
	assert.True(t, OrderStatusMatched.Matchable())
	for _, s := range []OrderStatus{OrderStatusDraft, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled} {
		assert.False(t, s.Matchable(), s)
	}

	assert.True(t, OfferStatusActive.Matchable())
	assert.True(t, OfferStatusInProgress.Matchable())
	assert.False(t, OfferStatusCompleted.Matchable())
	assert.False(t, OfferStatusCancelled.Matchable())
}
