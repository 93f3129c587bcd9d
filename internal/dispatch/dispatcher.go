package dispatch

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/hikari-bot/backend/internal/entity"
	"github.com/hikari-bot/backend/internal/repository"
	"github.com/hikari-bot/backend/pkg/discord"
	"github.com/hikari-bot/backend/pkg/errorx"
	"github.com/hikari-bot/backend/pkg/xcontext"
)

const (
	HeaderSignature = "X-Signature-Ed25519"
	HeaderTimestamp = "X-Signature-Timestamp"
)

// Dispatcher is the http.Handler of the interactions endpoint. Each inbound
// call runs verify -> decode -> resolve -> invoke, and every accepted
// command ends in exactly one reply, inline or deferred-then-follow-up.
type Dispatcher struct {
	registry   *Registry
	deferral   *Manager
	reportRepo repository.FailureReportRepository
	publicKey  ed25519.PublicKey
}

func NewDispatcher(
	registry *Registry,
	deferral *Manager,
	reportRepo repository.FailureReportRepository,
	publicKey ed25519.PublicKey,
) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		deferral:   deferral,
		reportRepo: reportRepo,
		publicKey:  publicKey,
	}
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "cannot read the request body", http.StatusBadRequest)
		return
	}

	// Nothing runs before authentication, not even decoding.
	err = discord.Verify(
		d.publicKey,
		r.Header.Get(HeaderSignature),
		r.Header.Get(HeaderTimestamp),
		body,
		xcontext.Configs(ctx).Discord.TimestampTolerance,
		time.Now(),
	)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Rejected an unauthenticated request: %v", err)
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	interaction, err := discord.DecodeInteraction(body, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if interaction.Type == discord.InteractionPing {
		writeResponse(ctx, w, discord.Pong())
		return
	}

	handler, ok := d.registry.Resolve(interaction.Command)
	if !ok {
		// An unknown command is a user-visible reply, not a server error.
		writeResponse(ctx, w, discord.EphemeralMessage(
			fmt.Sprintf("Unknown command: /%s", interaction.Command)))
		return
	}

	tracking := d.deferral.Track(interaction)
	resultCh := make(chan result, 1)

	// The handler runs on a detached context so that a dropped inbound
	// connection does not abort work the store may already reflect.
	go d.invoke(xcontext.Detach(ctx), handler, interaction, resultCh)

	if deferrer, ok := handler.(Deferrer); ok && deferrer.NeedsDeferral(interaction) {
		if d.deferral.Defer(ctx, tracking, resultCh) {
			writeResponse(ctx, w, discord.DeferredAck())
		}
		return
	}

	budget := time.NewTimer(d.deferral.InlineBudget(ctx))
	defer budget.Stop()

	select {
	case res := <-resultCh:
		if d.deferral.CompleteInline(tracking) {
			writeResponse(ctx, w, inlineResponse(res))
		}

	case <-budget.C:
		if d.deferral.Defer(ctx, tracking, resultCh) {
			writeResponse(ctx, w, discord.DeferredAck())
		}
	}
}

func (d *Dispatcher) invoke(
	ctx context.Context,
	handler Handler,
	interaction *discord.Interaction,
	resultCh chan<- result,
) {
	defer func() {
		if v := recover(); v != nil {
			xcontext.Logger(ctx).Errorf("Handler of /%s panicked: %v\n%s",
				interaction.Command, v, debug.Stack())
			d.reportFailure(ctx, interaction, entity.FailureHandlerPanic, fmt.Sprint(v))
			resultCh <- result{err: errorx.New(errorx.Internal, "Something went wrong, please try again later")}
		}
	}()

	response, err := handler.Handle(ctx, interaction)
	resultCh <- result{response: response, err: err}
}

func (d *Dispatcher) reportFailure(
	ctx context.Context, interaction *discord.Interaction, kind, detail string,
) {
	if d.reportRepo == nil {
		return
	}

	err := d.reportRepo.Create(ctx, &entity.FailureReport{
		Base:          entity.Base{ID: uuid.NewString()},
		InteractionID: interaction.ID,
		Command:       interaction.Command,
		UserID:        interaction.UserID,
		Kind:          kind,
		Detail:        detail,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record the failure report: %v", err)
	}
}

func inlineResponse(res result) discord.InteractionResponse {
	if res.err == nil {
		return res.response
	}

	var errx errorx.Error
	if errors.As(res.err, &errx) {
		return discord.EphemeralMessage(errx.Message)
	}

	return discord.EphemeralMessage(errorx.Unknown.Message)
}

func writeResponse(ctx context.Context, w http.ResponseWriter, resp discord.InteractionResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
	}
}
