package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/hikari-bot/backend/config"
	"github.com/hikari-bot/backend/internal/entity"
	"github.com/hikari-bot/backend/internal/repository"
	"github.com/hikari-bot/backend/internal/testutil"
	"github.com/hikari-bot/backend/pkg/discord"
	"github.com/hikari-bot/backend/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func deferralContext(expiry time.Duration) context.Context {
	return testutil.MockContext(config.Configs{
		Interaction: config.InteractionConfigs{
			InlineBudget:   50 * time.Millisecond,
			FollowUpExpiry: expiry,
		},
	})
}

func testInteraction() *discord.Interaction {
	return &discord.Interaction{
		ID:         "interaction-1",
		Type:       discord.InteractionApplicationCommand,
		Token:      "token-1",
		UserID:     "user-1",
		Command:    "chat",
		ReceivedAt: time.Now(),
	}
}

func waitTerminal(t *testing.T, tracking *Tracking) {
	t.Helper()
	select {
	case <-tracking.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("tracking never reached a terminal state, stuck at %s", tracking.State())
	}
}

func Test_Manager_CompleteInline(t *testing.T) {
	manager := NewManager(&testutil.MockDiscordEndpoint{}, nil)
	tracking := manager.Track(testInteraction())

	require.Equal(t, Pending, tracking.State())
	require.True(t, manager.CompleteInline(tracking))
	require.Equal(t, InlineReplied, tracking.State())

	// A second completion attempt must be refused.
	require.False(t, manager.CompleteInline(tracking))
	require.False(t, manager.Defer(deferralContext(time.Minute), tracking, nil))
}

func Test_Manager_DeferThenFollowUp(t *testing.T) {
	ctx := deferralContext(time.Minute)
	endpoint := &testutil.MockDiscordEndpoint{}
	manager := NewManager(endpoint, nil)

	tracking := manager.Track(testInteraction())
	resultCh := make(chan result, 1)

	require.True(t, manager.Defer(ctx, tracking, resultCh))
	require.Equal(t, Deferred, tracking.State())
	require.False(t, manager.CompleteInline(tracking))

	resultCh <- result{response: discord.Message("late answer")}
	waitTerminal(t, tracking)

	require.Equal(t, FollowedUp, tracking.State())
	followUps := endpoint.FollowUps()
	require.Len(t, followUps, 1)
	require.Equal(t, "token-1", followUps[0].Token)
	require.Equal(t, "late answer", followUps[0].Content)
}

func Test_Manager_DeferredErrorBecomesFollowUp(t *testing.T) {
	ctx := deferralContext(time.Minute)
	endpoint := &testutil.MockDiscordEndpoint{}
	manager := NewManager(endpoint, nil)

	tracking := manager.Track(testInteraction())
	resultCh := make(chan result, 1)
	require.True(t, manager.Defer(ctx, tracking, resultCh))

	resultCh <- result{err: errorx.New(errorx.Unavailable, "The model is unavailable right now")}
	waitTerminal(t, tracking)

	require.Equal(t, FollowedUp, tracking.State())
	followUps := endpoint.FollowUps()
	require.Len(t, followUps, 1)
	require.Equal(t, "The model is unavailable right now", followUps[0].Content)
}

func Test_Manager_FollowUpExpiry(t *testing.T) {
	ctx := deferralContext(20 * time.Millisecond)
	endpoint := &testutil.MockDiscordEndpoint{}
	reportRepo := repository.NewFailureReportRepository(testutil.GetEmptyTestDB(t))
	manager := NewManager(endpoint, reportRepo)

	tracking := manager.Track(testInteraction())
	resultCh := make(chan result, 1)
	require.True(t, manager.Defer(ctx, tracking, resultCh))

	// The handler never delivers a result.
	waitTerminal(t, tracking)

	require.Equal(t, Expired, tracking.State())
	require.Empty(t, endpoint.FollowUps())

	reports, err := reportRepo.GetByInteractionID(ctx, "interaction-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Equal(t, entity.FailureFollowUpExpired, reports[0].Kind)
	require.Equal(t, "chat", reports[0].Command)
	require.Equal(t, "user-1", reports[0].UserID)
}

func Test_Manager_FollowUpDeliveryFailure(t *testing.T) {
	ctx := deferralContext(time.Minute)
	endpoint := &testutil.MockDiscordEndpoint{
		EditOriginalFunc: func(ctx context.Context, token, content string) error {
			return errorx.New(errorx.BadResponse, "the platform rejected the edit")
		},
	}
	reportRepo := repository.NewFailureReportRepository(testutil.GetEmptyTestDB(t))
	manager := NewManager(endpoint, reportRepo)

	tracking := manager.Track(testInteraction())
	resultCh := make(chan result, 1)
	require.True(t, manager.Defer(ctx, tracking, resultCh))

	resultCh <- result{response: discord.Message("never arrives")}
	waitTerminal(t, tracking)

	require.Equal(t, Expired, tracking.State())
	require.Empty(t, endpoint.FollowUps())

	count, err := reportRepo.CountByKind(ctx, entity.FailureFollowUpDelivery)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func Test_State_String(t *testing.T) {
	require.Equal(t, "pending", Pending.String())
	require.Equal(t, "inline_replied", InlineReplied.String())
	require.Equal(t, "deferred", Deferred.String())
	require.Equal(t, "followed_up", FollowedUp.String())
	require.Equal(t, "expired", Expired.String())
}
