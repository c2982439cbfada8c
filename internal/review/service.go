// Package review handles the administrator side: listing requests and
// accepting or rejecting them.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"zapisnik/internal/events"
	"zapisnik/internal/metrics"
	"zapisnik/internal/model"
)

// ErrUnknownDecision is returned for a decision other than accept or reject.
var ErrUnknownDecision = errors.New("unknown decision")

// Decision values carried in callback data.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// Store is the persistence surface the review service needs.
type Store interface {
	GetAppointment(ctx context.Context, id int64) (*model.Appointment, error)
	ListByStatus(ctx context.Context, status string) ([]model.Appointment, error)
	DecideAppointment(ctx context.Context, id int64, status string) error
}

// Service lets the configured administrators review appointment requests.
type Service struct {
	store  Store
	admins map[int64]struct{}
	bus    *events.Bus
	logger zerolog.Logger
}

// NewService creates the review service for the given admin user IDs.
func NewService(store Store, adminIDs []int64, bus *events.Bus, logger zerolog.Logger) *Service {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Service{
		store:  store,
		admins: admins,
		bus:    bus,
		logger: logger.With().Str("component", "review").Logger(),
	}
}

// IsAdmin reports whether the user may review requests.
func (s *Service) IsAdmin(userID int64) bool {
	_, ok := s.admins[userID]
	return ok
}

// AdminIDs returns the configured admin user IDs.
func (s *Service) AdminIDs() []int64 {
	ids := make([]int64, 0, len(s.admins))
	for id := range s.admins {
		ids = append(ids, id)
	}
	return ids
}

// ListPending returns undecided requests ordered by slot.
func (s *Service) ListPending(ctx context.Context) ([]model.Appointment, error) {
	return s.store.ListByStatus(ctx, model.StatusPending)
}

// ListUpcoming returns accepted requests ordered by slot.
func (s *Service) ListUpcoming(ctx context.Context) ([]model.Appointment, error) {
	return s.store.ListByStatus(ctx, model.StatusAccepted)
}

// Decide applies an admin decision to a pending request. A request already
// decided earlier keeps its first decision and db.ErrAlreadyDecided comes
// back to the caller.
func (s *Service) Decide(ctx context.Context, adminID, id int64, decision string) (*model.Appointment, error) {
	var status string
	switch decision {
	case DecisionAccept:
		status = model.StatusAccepted
	case DecisionReject:
		status = model.StatusRejected
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDecision, decision)
	}

	if err := s.store.DecideAppointment(ctx, id, status); err != nil {
		return nil, err
	}
	a, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	metrics.IncAdminDecision(decision)
	s.bus.Publish(events.Event{Type: events.TypeAppointmentDecided, Payload: a})
	s.logger.Info().
		Int64("appointment_id", id).
		Int64("admin_id", adminID).
		Str("status", status).
		Msg("appointment decided")
	return a, nil
}
