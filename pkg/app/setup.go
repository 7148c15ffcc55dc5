// Package app wires the services together and subscribes the event handlers
// that react to committed domain events.
package app

import (
	"context"
	"log/slog"

	"github.com/amirasaad/finshare/pkg/domain/events"
	"github.com/amirasaad/finshare/pkg/eventbus"
)

// Dependencies contains all the dependencies needed by the SetupBus function
type Dependencies struct {
	Bus    eventbus.Bus
	Logger *slog.Logger
}

// SetupBus registers the event handlers with the provided event Bus.
func SetupBus(deps Dependencies) {
	if deps.Bus == nil {
		return
	}
	bus := deps.Bus
	bus.Register(
		events.EventTypeGoalCompleted.String(),
		HandleGoalCompleted(deps.Logger),
	)
	bus.Register(
		events.EventTypeGoalReopened.String(),
		HandleGoalReopened(deps.Logger),
	)
	bus.Register(
		events.EventTypeGroupMemberJoined.String(),
		HandleGroupMemberJoined(deps.Logger),
	)
	bus.Register(
		events.EventTypeBalanceDriftCorrected.String(),
		HandleDriftCorrected(deps.Logger),
	)
}

// HandleGoalCompleted records that a goal reached its target.
func HandleGoalCompleted(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "GoalCompleted")
		evt, ok := e.(events.GoalCompleted)
		if !ok {
			log.Error("unexpected event type", "event", e)
			return nil
		}
		log.Info("🎯 goal completed",
			"goalID", evt.GoalID,
			"userID", evt.UserID,
			"current", evt.Current,
			"target", evt.Target,
		)
		return nil
	}
}

// HandleGoalReopened records that a completed goal fell below its target.
func HandleGoalReopened(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "GoalReopened")
		evt, ok := e.(events.GoalReopened)
		if !ok {
			log.Error("unexpected event type", "event", e)
			return nil
		}
		log.Info("goal reopened",
			"goalID", evt.GoalID,
			"userID", evt.UserID,
			"current", evt.Current,
			"target", evt.Target,
		)
		return nil
	}
}

func HandleGroupMemberJoined(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "GroupMemberJoined")
		evt, ok := e.(events.GroupMemberJoined)
		if !ok {
			log.Error("unexpected event type", "event", e)
			return nil
		}
		log.Info("member joined group", "groupID", evt.GroupID, "userID", evt.UserID)
		return nil
	}
}

// HandleDriftCorrected warns about a stored balance that disagreed with
// the transaction log.
func HandleDriftCorrected(logger *slog.Logger) eventbus.HandlerFunc {
	return func(ctx context.Context, e events.Event) error {
		log := logger.With("handler", "DriftCorrected")
		evt, ok := e.(events.BalanceDriftCorrected)
		if !ok {
			log.Error("unexpected event type", "event", e)
			return nil
		}
		log.Warn("⚠️ balance drift corrected",
			"accountID", evt.AccountID,
			"stored", evt.Stored,
			"replayed", evt.Replayed,
		)
		return nil
	}
}
