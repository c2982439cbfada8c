package booking

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapisnik/internal/events"
	"zapisnik/internal/model"
)

type fakeAppointmentStore struct {
	created []*model.Appointment
}

func (f *fakeAppointmentStore) CreateAppointment(_ context.Context, a *model.Appointment) error {
	a.ID = int64(len(f.created) + 1)
	f.created = append(f.created, a)
	return nil
}

type fakeAvailability struct {
	dates map[string]bool
	times map[string]map[string]bool
}

func (f *fakeAvailability) OccupiedDates(_ context.Context) (map[string]bool, error) {
	return f.dates, nil
}

func (f *fakeAvailability) OccupiedTimes(_ context.Context, date string) (map[string]bool, error) {
	return f.times[date], nil
}

func newTestService(store *fakeAppointmentStore, avail *fakeAvailability) (*Service, SessionStore) {
	sessions := NewMemorySessionStore(30 * time.Minute)
	return NewService(store, avail, sessions, events.NewBus(), zerolog.Nop()), sessions
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format("2006-01-02")
}

func TestSelectDateRejectsPast(t *testing.T) {
	svc, sessions := newTestService(&fakeAppointmentStore{}, &fakeAvailability{})
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx, 1))

	err := svc.SelectDate(ctx, 1, "2020-01-01")
	assert.ErrorIs(t, err, ErrPastDate)

	session, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Empty(t, session.Draft.Date, "rejected date must not enter the draft")
	assert.Equal(t, StateAskDate, session.State)
}

func TestSelectDateRejectsOccupied(t *testing.T) {
	date := futureDate()
	avail := &fakeAvailability{dates: map[string]bool{date: true}}
	svc, sessions := newTestService(&fakeAppointmentStore{}, avail)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx, 1))

	err := svc.SelectDate(ctx, 1, date)
	assert.ErrorIs(t, err, ErrDateOccupied)

	session, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, session.Draft.Date)
}

func TestSelectTimeRejectsOccupied(t *testing.T) {
	date := futureDate()
	avail := &fakeAvailability{
		times: map[string]map[string]bool{date: {"14:00": true}},
	}
	svc, sessions := newTestService(&fakeAppointmentStore{}, avail)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx, 1))
	require.NoError(t, svc.SelectDate(ctx, 1, date))

	err := svc.SelectTime(ctx, 1, date, "14:00")
	assert.ErrorIs(t, err, ErrTimeOccupied)

	session, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, session.Draft.Time, "blocked slot must not enter the draft")
	assert.Equal(t, StateAskTime, session.State)
}

func TestFullDialogSubmit(t *testing.T) {
	store := &fakeAppointmentStore{}
	svc, sessions := newTestService(store, &fakeAvailability{})
	ctx := context.Background()
	date := futureDate()

	var published []events.Event
	bus := events.NewBus()
	bus.Subscribe(events.TypeAppointmentCreated, func(e events.Event) {
		published = append(published, e)
	})
	svc.bus = bus

	require.NoError(t, svc.Start(ctx, 1))
	require.NoError(t, svc.SelectDate(ctx, 1, date))
	require.NoError(t, svc.SelectTime(ctx, 1, date, "14:00"))

	label, err := svc.SelectReason(ctx, 1, "work")
	require.NoError(t, err)
	assert.Equal(t, "По работе", label)

	a, err := svc.Submit(ctx, 1, "@alice", 100, "буду к двум")
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, date+" 14:00", a.Time)
	assert.Equal(t, "По работе", a.Reason)
	assert.Equal(t, "буду к двум", a.Message)
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Equal(t, "@alice", a.User)
	assert.Equal(t, int64(100), a.ChatID)

	require.Len(t, published, 1)

	// Draft is discarded after submission.
	session, err := sessions.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSubmitWithoutDraft(t *testing.T) {
	store := &fakeAppointmentStore{}
	svc, _ := newTestService(store, &fakeAvailability{})
	ctx := context.Background()

	a, err := svc.Submit(ctx, 2, "@bob", 200, "просто поговорить")
	require.NoError(t, err)

	assert.Equal(t, "не выбрано не выбрано", a.Time)
	assert.Equal(t, "не выбрано", a.Reason)
	assert.Equal(t, model.StatusPending, a.Status)
}

func TestSelectReasonUnknownToken(t *testing.T) {
	svc, _ := newTestService(&fakeAppointmentStore{}, &fakeAvailability{})
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx, 3))

	label, err := svc.SelectReason(ctx, 3, "bogus")
	require.NoError(t, err)
	assert.Equal(t, "Не указано", label)
}
