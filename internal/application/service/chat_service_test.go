package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/trip-expenses/internal/application/dispatcher"
	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/application/wizard"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/event"
	"github.com/garyjia/trip-expenses/internal/domain/extract"
	"github.com/garyjia/trip-expenses/internal/domain/workflow"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]entity.ChatSession
	saveErr  error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]entity.ChatSession)}
}

func (s *fakeSessionStore) Get(ctx context.Context, id string) (*entity.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &session, nil
}

func (s *fakeSessionStore) Save(ctx context.Context, session *entity.ChatSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *fakeSessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *fakeSessionStore) ListIdle(ctx context.Context, before time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(before) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type chatFixture struct {
	svc     ChatService
	store   *fakeSessionStore
	gateway *mockGateway
	events  []event.Type
	mu      sync.Mutex
	clock   time.Time
}

func (f *chatFixture) received() []event.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event.Type(nil), f.events...)
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		store:   newFakeSessionStore(),
		gateway: &mockGateway{},
		clock:   fixedNow,
	}

	d := dispatcher.NewDispatcher()
	d.Subscribe(dispatcher.AllEvents, func(ctx context.Context, evt *event.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.events = append(f.events, evt.Type)
		return nil
	})
	t.Cleanup(func() { _ = d.Close() })

	extractor, err := NewExtractionService(nil, extract.New(nil, nil, nil), ExtractionConfig{}, &testLogger{})
	require.NoError(t, err)

	f.svc = NewChatService(f.store, wizard.Deps{
		Gateway:   f.gateway,
		Extractor: extractor,
		Now:       func() time.Time { return f.clock },
	}, d, ChatConfig{}, &testLogger{})
	return f
}

func send(t *testing.T, f *chatFixture, sessionID string, inputs ...string) *MessageResult {
	t.Helper()
	var last *MessageResult
	for _, in := range inputs {
		result, err := f.svc.SendMessage(context.Background(), "user-1", sessionID, in)
		require.NoError(t, err)
		last = result
	}
	return last
}

func TestStartSession(t *testing.T) {
	f := newChatFixture(t)

	session, err := f.svc.StartSession(context.Background(), "user-1", "")
	require.NoError(t, err)

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "user-1", session.OwnerID)
	assert.Equal(t, entity.EntryModeGuided, session.Mode)
	assert.Equal(t, workflow.StateAwaitingDate, session.State)
	assert.Len(t, session.Transcript, 2)
	assert.Equal(t, []event.Type{event.TypeSessionStarted}, f.received())

	stored, err := f.store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.ID, stored.ID)
}

func TestStartSession_Validation(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.svc.StartSession(context.Background(), "", entity.EntryModeGuided)
	assert.Error(t, err)

	_, err = f.svc.StartSession(context.Background(), "user-1", "voice")
	assert.Error(t, err)
}

func TestStartSession_SaveError(t *testing.T) {
	f := newChatFixture(t)
	f.store.saveErr = errors.New("disk full")

	_, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	assert.Error(t, err)
	assert.Empty(t, f.received())
}

func TestSendMessage_GuidedTripIsSaved(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	result := send(t, f, session.ID, "24/05/2025", "Portugal", "Lisboa", "3500", "1200", "450", "TI")
	assert.Equal(t, workflow.StateAwaitingConfirmation, result.Session.State)

	result = send(t, f, session.ID, "sim")

	assert.Equal(t, wizard.OutcomeSaved, result.Reply.Outcome)
	assert.Equal(t, "trip-1", result.Reply.TripID)
	assert.Equal(t, workflow.StateAwaitingDate, result.Session.State)
	assert.True(t, result.Session.Draft.IsEmpty())
	assert.Equal(t, session.CreatedAt, result.Session.CreatedAt)
	require.Len(t, f.gateway.calls, 1)
	assert.Equal(t, "user-1", f.gateway.calls[0].UserID)

	events := f.received()
	assert.Equal(t, event.TypeTripSaved, events[len(events)-1])
}

func TestSendMessage_RejectionPublishesEvent(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	result := send(t, f, session.ID, "ontem")

	assert.Equal(t, wizard.OutcomeRejected, result.Reply.Outcome)
	assert.Equal(t, []event.Type{event.TypeSessionStarted, event.TypeInputRejected}, f.received())
}

func TestSendMessage_FreeTextPublishesExtraction(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeFreeText)
	require.NoError(t, err)

	result := send(t, f, session.ID, sampleTrip)

	assert.Equal(t, wizard.OutcomePrefilled, result.Reply.Outcome)
	assert.Equal(t, workflow.StateAwaitingAllowance, result.Session.State)
	assert.Equal(t, []event.Type{event.TypeSessionStarted, event.TypeExtractionCompleted}, f.received())
}

func TestSendMessage_SaveFailureKeepsDraft(t *testing.T) {
	f := newChatFixture(t)
	f.gateway.insertFunc = func(ctx context.Context, trip entity.TripInsertPayload) (string, error) {
		return "", errors.New("connection refused")
	}
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	result := send(t, f, session.ID, "24/05/2025", "Portugal", "Lisboa", "3500", "1200", "450", "TI", "sim")

	assert.Equal(t, wizard.OutcomeSaveFailed, result.Reply.Outcome)
	assert.ErrorIs(t, result.Reply.Err, wizard.ErrPersistenceFailure)
	assert.Equal(t, workflow.StateAwaitingConfirmation, result.Session.State)
	assert.True(t, result.Session.Draft.IsComplete())

	events := f.received()
	assert.Equal(t, event.TypeTripSaveFailed, events[len(events)-1])
}

func TestSendMessage_Discard(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	result := send(t, f, session.ID, "24/05/2025", "Portugal", "Lisboa", "3500", "1200", "450", "TI", "não")

	assert.Equal(t, wizard.OutcomeDiscarded, result.Reply.Outcome)
	assert.Empty(t, f.gateway.calls)
	events := f.received()
	assert.Equal(t, event.TypeDraftDiscarded, events[len(events)-1])
}

func TestSendMessage_UnknownOrForeignSession(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	_, err = f.svc.SendMessage(context.Background(), "user-1", "missing", "24/05/2025")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = f.svc.SendMessage(context.Background(), "user-2", session.ID, "24/05/2025")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendMessage_Busy(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	impl := f.svc.(*chatServiceImpl)
	lock := impl.lockFor(session.ID)
	lock.Lock()
	defer lock.Unlock()

	_, err = f.svc.SendMessage(context.Background(), "user-1", session.ID, "24/05/2025")
	assert.ErrorIs(t, err, ErrSessionBusy)
}

func TestGetSession(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	got, err := f.svc.GetSession(context.Background(), "user-1", session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Transcript, got.Transcript)

	_, err = f.svc.GetSession(context.Background(), "user-2", session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCloseSession(t *testing.T) {
	f := newChatFixture(t)
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	require.NoError(t, f.svc.CloseSession(context.Background(), "user-1", session.ID))

	_, err = f.svc.GetSession(context.Background(), "user-1", session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, []event.Type{event.TypeSessionStarted, event.TypeSessionClosed}, f.received())
}

func TestCloseSession_WhileMessageInFlight(t *testing.T) {
	f := newChatFixture(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	f.gateway.insertFunc = func(ctx context.Context, trip entity.TripInsertPayload) (string, error) {
		close(entered)
		<-release
		return "trip-1", nil
	}
	session, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)
	send(t, f, session.ID, "24/05/2025", "Portugal", "Lisboa", "3500", "1200", "450", "TI")

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.SendMessage(context.Background(), "user-1", session.ID, "sim")
		done <- err
	}()
	<-entered

	err = f.svc.CloseSession(context.Background(), "user-1", session.ID)
	assert.ErrorIs(t, err, ErrSessionBusy)

	close(release)
	require.NoError(t, <-done)

	require.NoError(t, f.svc.CloseSession(context.Background(), "user-1", session.ID))
	_, err = f.svc.GetSession(context.Background(), "user-1", session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendMessage_UnknownSessionLeavesNoLock(t *testing.T) {
	f := newChatFixture(t)
	impl := f.svc.(*chatServiceImpl)

	_, err := f.svc.SendMessage(context.Background(), "user-1", "missing", "24/05/2025")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, ok := impl.locks.Load("missing")
	assert.False(t, ok)
}

func TestSweepIdle(t *testing.T) {
	f := newChatFixture(t)
	idle, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	f.clock = fixedNow.Add(time.Hour)
	active, err := f.svc.StartSession(context.Background(), "user-1", entity.EntryModeGuided)
	require.NoError(t, err)

	removed, err := f.svc.SweepIdle(context.Background(), 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.svc.GetSession(context.Background(), "user-1", idle.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.GetSession(context.Background(), "user-1", active.ID)
	assert.NoError(t, err)
}
