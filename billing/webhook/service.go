package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/fablepress/fablepress/billing/period"
	"github.com/fablepress/fablepress/pkg/logger"
)

// Service applies normalized provider events to the billing-period state
// machine, exactly once per event ID.
type Service struct {
	machine *period.Machine
	events  EventStore
	log     *slog.Logger
}

// NewService returns a webhook ingestion service.
// Panics on nil machine or event store to fail fast during initialization.
func NewService(machine *period.Machine, events EventStore, log *slog.Logger) *Service {
	if machine == nil {
		panic("webhook: period machine is required")
	}
	if events == nil {
		panic("webhook: event store is required")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		machine: machine,
		events:  events,
		log:     log.With(logger.Component("webhook")),
	}
}

// ApplyEvent processes one verified provider event.
//
// The event ID is reserved in the processed-event store before any state
// changes; a second delivery of the same ID returns Duplicate with state
// identical to a single application. A system error while applying releases
// the reservation so the provider's retry is not wasted. Transitions the
// account's state does not allow, and unrecognized types, are acknowledged
// as Ignored: there is nothing a provider retry could fix.
func (s *Service) ApplyEvent(ctx context.Context, event Event) (Result, error) {
	if err := validate(event); err != nil {
		return "", errors.Join(ErrMalformedEvent, err)
	}

	first, err := s.events.MarkProcessed(ctx, event.ID)
	if err != nil {
		return "", fmt.Errorf("webhook dedupe: %w", err)
	}
	if !first {
		s.log.InfoContext(ctx, "duplicate webhook event skipped",
			logger.EventID(event.ID), logger.EventType(string(event.Type)))
		return Duplicate, nil
	}

	result, err := s.apply(ctx, event)
	if err != nil {
		// Free the slot so the provider retry can apply the event.
		if relErr := s.events.Release(ctx, event.ID); relErr != nil {
			s.log.ErrorContext(ctx, "failed to release webhook event after error",
				logger.EventID(event.ID), logger.Error(relErr))
		}
		return "", err
	}

	s.log.InfoContext(ctx, "webhook event handled",
		logger.EventID(event.ID),
		logger.EventType(string(event.Type)),
		logger.AccountID(event.AccountID),
		slog.String("result", string(result)),
	)
	return result, nil
}

func (s *Service) apply(ctx context.Context, event Event) (Result, error) {
	var err error

	switch event.Type {
	case EventCheckoutCompleted:
		_, err = s.machine.ActivateCheckout(ctx, event.AccountID, event.PlanID,
			event.PeriodStart, event.PeriodEnd, event.CustomerID, event.SubscriptionID)
	case EventPaymentSucceeded:
		_, err = s.machine.RenewPeriod(ctx, event.AccountID,
			event.PeriodStart, event.PeriodEnd, event.PaidAt)
	case EventPaymentFailed:
		_, err = s.machine.MarkPastDue(ctx, event.AccountID)
	case EventSubscriptionCanceled:
		_, err = s.machine.MarkCanceled(ctx, event.AccountID)
	default:
		// Providers send far more event types than billing cares about.
		s.log.InfoContext(ctx, "unrecognized webhook event ignored",
			logger.EventID(event.ID), logger.EventType(event.ProviderEvent))
		return Ignored, nil
	}

	if err != nil {
		// A transition the account's state forbids is not retryable: the
		// provider would only replay the same rejection.
		if errors.Is(err, period.ErrInvalidTransition) {
			s.log.WarnContext(ctx, "webhook event not applicable to account state",
				logger.EventID(event.ID),
				logger.EventType(string(event.Type)),
				logger.AccountID(event.AccountID),
				logger.Error(err),
			)
			return Ignored, nil
		}
		return "", fmt.Errorf("apply webhook event %s: %w", event.ID, err)
	}
	return Applied, nil
}

func validate(event Event) error {
	if event.ID == "" {
		return ErrMissingEventID
	}
	// Unrecognized types are acknowledged without touching an account, so
	// only recognized types need one.
	switch event.Type {
	case EventCheckoutCompleted, EventPaymentSucceeded, EventPaymentFailed, EventSubscriptionCanceled:
		if event.AccountID == uuid.Nil {
			return ErrMissingAccountID
		}
	}
	return nil
}

// Prune removes processed-event entries past the retention window. Run from
// a ticker alongside the server; stores with native expiry make this a no-op.
func (s *Service) Prune(ctx context.Context) error {
	pruned, err := s.events.PruneOlderThan(ctx, DefaultRetention)
	if err != nil {
		return fmt.Errorf("prune webhook events: %w", err)
	}
	if pruned > 0 {
		s.log.InfoContext(ctx, "pruned processed webhook events", slog.Int64("count", pruned))
	}
	return nil
}
