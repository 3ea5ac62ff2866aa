package controllers

import (
	"net/http"
	"testing"

	"github.com/campuscarry/campuscarry-api/events"
	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMatchEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	body := CreateMatchRequest{OrderID: env.order.ID, OfferID: env.offer.ID}

	w := env.do(t, http.MethodPost, path("/matches"), "buyer", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	match := decode[models.Match](t, w)
	assert.Equal(t, models.MatchStatusPending, match.Status)
	assert.Equal(t, models.OrderStatusMatched, match.Order.Status)
	assert.Equal(t, models.OfferStatusInProgress, match.Offer.Status)
	assert.Equal(t, "deliverer", match.Offer.Deliverer.Name)
	assert.Len(t, env.notifier.Events(), 1)

	w = env.do(t, http.MethodPost, path("/matches"), "deliverer", body)
	requireError(t, w, http.StatusConflict, "CONFLICT")
}

func TestCreateMatchEndpointErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		as         string
		body       any
		wantStatus int
		wantCode   string
	}{
		{"no credentials", "", CreateMatchRequest{OrderID: env.order.ID, OfferID: env.offer.ID}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"no profile", "ghost", CreateMatchRequest{OrderID: env.order.ID, OfferID: env.offer.ID}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"missing ids", "buyer", map[string]any{}, http.StatusBadRequest, "INVALID_INPUT"},
		{"malformed json", "buyer", "{", http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown order", "buyer", CreateMatchRequest{OrderID: 999, OfferID: env.offer.ID}, http.StatusNotFound, "NOT_FOUND"},
		{"unknown offer", "buyer", CreateMatchRequest{OrderID: env.order.ID, OfferID: 999}, http.StatusNotFound, "NOT_FOUND"},
		{"outsider", "stranger", CreateMatchRequest{OrderID: env.order.ID, OfferID: env.offer.ID}, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, path("/matches"), tt.as, tt.body)
			requireError(t, w, tt.wantStatus, tt.wantCode)
		})
	}
	assert.Empty(t, env.notifier.Events())
}

func TestUpdateMatchStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)
	match := testutil.CreateMatch(t, env.db, env.order, env.offer, models.MatchStatusPending)
	url := path("/matches/%d/status", match.ID)

	w := env.do(t, http.MethodPut, url, "stranger", UpdateMatchStatusRequest{Status: "ACCEPTED"})
	requireError(t, w, http.StatusForbidden, "FORBIDDEN")

	w = env.do(t, http.MethodPut, url, "stranger", UpdateMatchStatusRequest{Status: "NONSENSE"})
	requireError(t, w, http.StatusForbidden, "FORBIDDEN")

	w = env.do(t, http.MethodPut, url, "buyer", UpdateMatchStatusRequest{Status: "NONSENSE"})
	requireError(t, w, http.StatusBadRequest, "INVALID_INPUT")

	w = env.do(t, http.MethodPut, url, "buyer", UpdateMatchStatusRequest{Status: "COMPLETED"})
	requireError(t, w, http.StatusUnprocessableEntity, "PRECONDITION_FAILED")

	w = env.do(t, http.MethodPut, url, "buyer", UpdateMatchStatusRequest{Status: "ACCEPTED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.MatchStatusAccepted, decode[models.Match](t, w).Status)

	w = env.do(t, http.MethodPut, url, "deliverer", UpdateMatchStatusRequest{Status: "COMPLETED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := decode[models.Match](t, w)
	assert.Equal(t, models.MatchStatusCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, models.OrderStatusCompleted, completed.Order.Status)
	assert.Equal(t, models.OfferStatusCompleted, completed.Offer.Status)

	published := env.notifier.Events()
	require.Len(t, published, 2)
	assert.Equal(t, events.MatchStatusUpdated, published[1].Name)

	w = env.do(t, http.MethodPut, path("/matches/abc/status"), "buyer", UpdateMatchStatusRequest{Status: "ACCEPTED"})
	requireError(t, w, http.StatusBadRequest, "INVALID_INPUT")

	w = env.do(t, http.MethodPut, path("/matches/999/status"), "buyer", UpdateMatchStatusRequest{Status: "ACCEPTED"})
	requireError(t, w, http.StatusNotFound, "NOT_FOUND")
}

func TestMatchReadEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	match := testutil.CreateMatch(t, env.db, env.order, env.offer, models.MatchStatusPending)
	otherOrder := testutil.CreateOrder(t, env.db, env.stranger)
	testutil.CreateMatch(t, env.db, otherOrder, env.offer, models.MatchStatusPending)

	w := env.do(t, http.MethodGet, path("/matches/%d", match.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[models.Match](t, w)
	assert.Equal(t, match.ID, got.ID)

	w = env.do(t, http.MethodGet, path("/matches/order/%d", env.order.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Match](t, w), 1)

	w = env.do(t, http.MethodGet, path("/matches/offer/%d", env.offer.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Match](t, w), 2)

	w = env.do(t, http.MethodGet, path("/matches"), "buyer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Match](t, w), 1)

	w = env.do(t, http.MethodGet, path("/matches"), "deliverer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Match](t, w), 2)

	w = env.do(t, http.MethodGet, path("/matches"), "", nil)
	requireError(t, w, http.StatusUnauthorized, "UNAUTHORIZED")

	w = env.do(t, http.MethodGet, path("/matches/999"), "", nil)
	requireError(t, w, http.StatusNotFound, "NOT_FOUND")
}
