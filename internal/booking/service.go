package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"zapisnik/internal/events"
	"zapisnik/internal/metrics"
	"zapisnik/internal/model"
)

var (
	// ErrPastDate is returned when the chosen date lies before today.
	ErrPastDate = errors.New("date is in the past")
	// ErrDateOccupied is returned when the chosen date is already taken.
	ErrDateOccupied = errors.New("date is occupied")
	// ErrTimeOccupied is returned when the chosen time slot is already taken.
	ErrTimeOccupied = errors.New("time slot is occupied")
)

const dateLayout = "2006-01-02"

// NotSelected is substituted for draft fields the user skipped.
const NotSelected = "не выбрано"

// Reason is a selectable meeting reason.
type Reason struct {
	Token string
	Label string
}

// Reasons returns the fixed reason categories in keyboard order.
func Reasons() []Reason {
	return []Reason{
		{Token: "work", Label: "По работе"},
		{Token: "study", Label: "По учебе"},
		{Token: "date", Label: "Свидание"},
		{Token: "other", Label: "Другое"},
	}
}

// ReasonLabel maps a reason token to its display label.
func ReasonLabel(token string) string {
	for _, r := range Reasons() {
		if r.Token == token {
			return r.Label
		}
	}
	return "Не указано"
}

// AppointmentStore persists submitted requests.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a *model.Appointment) error
}

// Availability answers which dates and slots are already taken.
type Availability interface {
	OccupiedDates(ctx context.Context) (map[string]bool, error)
	OccupiedTimes(ctx context.Context, date string) (map[string]bool, error)
}

// Service owns the booking dialog: it validates each selection, accumulates
// the per-user draft and submits the finished request.
type Service struct {
	store    AppointmentStore
	avail    Availability
	sessions SessionStore
	fsm      *FSM
	bus      *events.Bus
	logger   zerolog.Logger
}

// NewService creates the booking service.
func NewService(store AppointmentStore, avail Availability, sessions SessionStore, bus *events.Bus, logger zerolog.Logger) *Service {
	return &Service{
		store:    store,
		avail:    avail,
		sessions: sessions,
		fsm:      NewFSM(),
		bus:      bus,
		logger:   logger.With().Str("component", "booking").Logger(),
	}
}

// Start opens a fresh dialog for the user, discarding any previous draft.
func (s *Service) Start(ctx context.Context, userID int64) error {
	return s.sessions.Save(ctx, NewSession(userID))
}

// SelectDate validates and records the chosen date.
// Past and occupied dates are rejected without touching the draft.
func (s *Service) SelectDate(ctx context.Context, userID int64, date string) error {
	chosen, err := time.ParseInLocation(dateLayout, date, time.Local)
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	if chosen.Before(today) {
		return ErrPastDate
	}

	occupied, err := s.avail.OccupiedDates(ctx)
	if err != nil {
		return fmt.Errorf("occupied dates: %w", err)
	}
	if occupied[date] {
		return ErrDateOccupied
	}

	session, err := s.session(ctx, userID)
	if err != nil {
		return err
	}
	session.Draft.Date = date
	s.advance(session, StateAskTime)
	return s.sessions.Save(ctx, session)
}

// SelectTime validates and records the chosen time slot for a date.
func (s *Service) SelectTime(ctx context.Context, userID int64, date, timeOfDay string) error {
	occupied, err := s.avail.OccupiedTimes(ctx, date)
	if err != nil {
		return fmt.Errorf("occupied times: %w", err)
	}
	if occupied[timeOfDay] {
		return ErrTimeOccupied
	}

	session, err := s.session(ctx, userID)
	if err != nil {
		return err
	}
	session.Draft.Date = date
	session.Draft.Time = timeOfDay
	s.advance(session, StateAskReason)
	return s.sessions.Save(ctx, session)
}

// SelectReason records the chosen reason and returns its display label.
func (s *Service) SelectReason(ctx context.Context, userID int64, token string) (string, error) {
	session, err := s.session(ctx, userID)
	if err != nil {
		return "", err
	}
	label := ReasonLabel(token)
	session.Draft.Reason = label
	s.advance(session, StateAskMessage)
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return label, nil
}

// Submit turns the draft plus the user's free-text note into a pending
// appointment. Skipped draft fields are stored as the "не выбрано"
// placeholder; the draft is discarded afterwards.
func (s *Service) Submit(ctx context.Context, userID int64, user string, chatID int64, note string) (*model.Appointment, error) {
	draft := Draft{}
	if session, err := s.sessions.Get(ctx, userID); err == nil && session != nil {
		draft = session.Draft
	}

	a := &model.Appointment{
		User:    user,
		ChatID:  chatID,
		Time:    model.CombineSlot(orNotSelected(draft.Date), orNotSelected(draft.Time)),
		Reason:  orNotSelected(draft.Reason),
		Message: note,
		Status:  model.StatusPending,
	}
	if err := s.store.CreateAppointment(ctx, a); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	if err := s.sessions.Delete(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to discard draft")
	}

	metrics.IncAppointmentCreated()
	s.bus.Publish(events.Event{Type: events.TypeAppointmentCreated, Payload: a})
	s.logger.Info().Int64("appointment_id", a.ID).Str("slot", a.Time).Msg("appointment submitted")
	return a, nil
}

func (s *Service) session(ctx context.Context, userID int64) (*Session, error) {
	session, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		session = NewSession(userID)
	}
	return session, nil
}

func (s *Service) advance(session *Session, to State) {
	if !s.fsm.Transition(session, to) {
		// A button press from an earlier dialog message; restart the dialog
		// at the step the user just completed.
		session.State = to
		session.UpdatedAt = time.Now()
	}
}

func orNotSelected(v string) string {
	if v == "" {
		return NotSelected
	}
	return v
}
