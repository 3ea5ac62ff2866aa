package services

import (
	"context"
	"testing"

	"github.com/campuscarry/campuscarry-api/events"
	"github.com/campuscarry/campuscarry-api/models"
	"github.com/campuscarry/campuscarry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSendMessage(t *testing.T) {
	f := newMatchFixture(t)
	svc := NewMessageService(f.db, f.notifier, zap.NewNop())
	match := testutil.CreateMatch(t, f.db, f.order, f.offer, models.MatchStatusAccepted)

	tests := []struct {
		name     string
		matchID  uint
		sender   uint
		content  string
		wantCode string
	}{
		{name: "buyer", matchID: match.ID, sender: f.buyer.ID, content: "I'm at the front desk"},
		{name: "deliverer", matchID: match.ID, sender: f.deliverer.ID, content: "  On my way  "},
		{name: "missing match", matchID: 999, sender: f.buyer.ID, content: "hello", wantCode: CodeNotFound},
		{name: "non-party", matchID: match.ID, sender: f.stranger.ID, content: "hello", wantCode: CodeForbidden},
		{name: "non-party with empty content is still forbidden", matchID: match.ID, sender: f.stranger.ID, content: "", wantCode: CodeForbidden},
		{name: "blank content", matchID: match.ID, sender: f.buyer.ID, content: "   ", wantCode: CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := svc.SendMessage(context.Background(), tt.matchID, tt.sender, tt.content)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, ErrorCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sender, msg.Sender.ID)
			assert.NotEmpty(t, msg.Sender.Name)
			assert.NotEmpty(t, msg.Content)
		})
	}

	published := f.notifier.Events()
	require.Len(t, published, 2)
	for _, e := range published {
		assert.Equal(t, events.NewMessage, e.Name)
		assert.Equal(t, match.Room(), e.Room)
	}
	assert.Equal(t, "On my way", published[1].Data.(models.Message).Content)
}

func TestGetMessages(t *testing.T) {
	f := newMatchFixture(t)
	svc := NewMessageService(f.db, f.notifier, zap.NewNop())
	match := testutil.CreateMatch(t, f.db, f.order, f.offer, models.MatchStatusPending)
	ctx := context.Background()

	for _, line := range []struct {
		sender  uint
		content string
	}{
		{f.buyer.ID, "first"},
		{f.deliverer.ID, "second"},
		{f.buyer.ID, "third"},
	} {
		_, err := svc.SendMessage(ctx, match.ID, line.sender, line.content)
		require.NoError(t, err)
	}

	for _, reader := range []uint{f.buyer.ID, f.deliverer.ID} {
		thread, err := svc.GetMessages(ctx, match.ID, reader)
		require.NoError(t, err)
		require.Len(t, thread, 3)
		assert.Equal(t, []string{"first", "second", "third"},
			[]string{thread[0].Content, thread[1].Content, thread[2].Content})
		assert.False(t, thread[2].CreatedAt.Before(thread[0].CreatedAt))
	}

	_, err := svc.GetMessages(ctx, match.ID, f.stranger.ID)
	assert.Equal(t, CodeForbidden, ErrorCode(err))

	_, err = svc.GetMessages(ctx, 999, f.buyer.ID)
	assert.Equal(t, CodeNotFound, ErrorCode(err))
}

func TestGetMessagesEmptyThread(t *testing.T) {
	f := newMatchFixture(t)
	svc := NewMessageService(f.db, f.notifier, zap.NewNop())
	match := testutil.CreateMatch(t, f.db, f.order, f.offer, models.MatchStatusPending)

	thread, err := svc.GetMessages(context.Background(), match.ID, f.buyer.ID)
	require.NoError(t, err)
	assert.NotNil(t, thread)
	assert.Empty(t, thread)
}
