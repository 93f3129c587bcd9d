package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/hikari-bot/backend/internal/entity"
	"github.com/hikari-bot/backend/internal/repository"
	discordapi "github.com/hikari-bot/backend/pkg/api/discord"
	"github.com/hikari-bot/backend/pkg/crypto"
	"github.com/hikari-bot/backend/pkg/discord"
	"github.com/hikari-bot/backend/pkg/errorx"
	"github.com/hikari-bot/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

const (
	defaultInlineBudget   = 2500 * time.Millisecond
	defaultFollowUpExpiry = 14 * time.Minute
)

type State int

const (
	Pending State = iota
	InlineReplied
	Deferred
	FollowedUp
	Expired
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case InlineReplied:
		return "inline_replied"
	case Deferred:
		return "deferred"
	case FollowedUp:
		return "followed_up"
	case Expired:
		return "expired"
	}

	return "unknown"
}

type result struct {
	response discord.InteractionResponse
	err      error
}

// Tracking follows a single interaction through the reply state machine
// Pending -> {InlineReplied, Deferred -> {FollowedUp, Expired}}. Each
// interaction reaches exactly one terminal state.
type Tracking struct {
	JobID       snowflake.ID
	interaction *discord.Interaction

	mu    sync.Mutex
	state State
	done  chan struct{}
}

func (t *Tracking) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Done is closed once the tracking reaches a terminal state.
func (t *Tracking) Done() <-chan struct{} {
	return t.done
}

func (t *Tracking) transition(from, to State) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != from {
		return false
	}

	t.state = to
	if to == InlineReplied || to == FollowedUp || to == Expired {
		close(t.done)
	}

	return true
}

// Manager arbitrates between the inline reply and the deferred follow-up of
// every interaction, and records failures that can no longer be reported to
// the invoking user.
type Manager struct {
	discordEndpoint discordapi.IEndpoint
	reportRepo      repository.FailureReportRepository

	node    *snowflake.Node
	pending *xsync.MapOf[string, *Tracking]
}

func NewManager(
	discordEndpoint discordapi.IEndpoint,
	reportRepo repository.FailureReportRepository,
) *Manager {
	node, err := snowflake.NewNode(int64(crypto.RandIntn(1024)))
	if err != nil {
		panic(err)
	}

	return &Manager{
		discordEndpoint: discordEndpoint,
		reportRepo:      reportRepo,
		node:            node,
		pending:         xsync.NewMapOf[*Tracking](),
	}
}

func (m *Manager) Track(interaction *discord.Interaction) *Tracking {
	tracking := &Tracking{
		JobID:       m.node.Generate(),
		interaction: interaction,
		state:       Pending,
		done:        make(chan struct{}),
	}

	m.pending.Store(interaction.Token, tracking)
	return tracking
}

func (m *Manager) InlineBudget(ctx context.Context) time.Duration {
	if budget := xcontext.Configs(ctx).Interaction.InlineBudget; budget > 0 {
		return budget
	}

	return defaultInlineBudget
}

// CompleteInline transitions Pending -> InlineReplied. It returns false if
// the interaction already left the pending state, in which case the caller
// must not write a second reply.
func (m *Manager) CompleteInline(tracking *Tracking) bool {
	if !tracking.transition(Pending, InlineReplied) {
		return false
	}

	m.pending.Delete(tracking.interaction.Token)
	return true
}

// Defer transitions Pending -> Deferred and spawns the waiter that delivers
// the handler result as a follow-up once it arrives. The waiter runs on a
// detached context: a dropped inbound connection must not abort delivery.
func (m *Manager) Defer(ctx context.Context, tracking *Tracking, resultCh <-chan result) bool {
	if !tracking.transition(Pending, Deferred) {
		return false
	}

	go m.awaitFollowUp(xcontext.Detach(ctx), tracking, resultCh)
	return true
}

func (m *Manager) awaitFollowUp(ctx context.Context, tracking *Tracking, resultCh <-chan result) {
	defer m.pending.Delete(tracking.interaction.Token)

	expiry := xcontext.Configs(ctx).Interaction.FollowUpExpiry
	if expiry <= 0 {
		expiry = defaultFollowUpExpiry
	}

	remaining := expiry - time.Since(tracking.interaction.ReceivedAt)
	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case res := <-resultCh:
		content := replyContent(res)
		if err := m.discordEndpoint.EditOriginalResponse(ctx, tracking.interaction.Token, content); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot deliver the follow-up of job %d: %v", tracking.JobID, err)
			m.report(ctx, tracking, entity.FailureFollowUpDelivery, err.Error())
			tracking.transition(Deferred, Expired)
			return
		}

		tracking.transition(Deferred, FollowedUp)

	case <-timer.C:
		// The token is dead past this point; record the failure instead
		// of retrying.
		xcontext.Logger(ctx).Errorf("Follow-up of job %d expired before the handler finished", tracking.JobID)
		m.report(ctx, tracking, entity.FailureFollowUpExpired, "handler result arrived too late")
		tracking.transition(Deferred, Expired)
	}
}

func (m *Manager) report(ctx context.Context, tracking *Tracking, kind, detail string) {
	if m.reportRepo == nil {
		return
	}

	err := m.reportRepo.Create(ctx, &entity.FailureReport{
		Base:          entity.Base{ID: uuid.NewString()},
		InteractionID: tracking.interaction.ID,
		Command:       tracking.interaction.Command,
		UserID:        tracking.interaction.UserID,
		Kind:          kind,
		Detail:        detail,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record the failure report: %v", err)
	}
}

func replyContent(res result) string {
	if res.err == nil {
		if res.response.Data != nil {
			return res.response.Data.Content
		}

		return ""
	}

	var errx errorx.Error
	if errors.As(res.err, &errx) {
		return errx.Message
	}

	return errorx.Unknown.Message
}
