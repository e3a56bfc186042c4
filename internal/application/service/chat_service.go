package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/trip-expenses/internal/application/dispatcher"
	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/application/wizard"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/event"
)

var (
	// ErrSessionNotFound is returned for unknown, expired or foreign sessions
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrSessionBusy is returned when a message arrives while the previous one is still being handled
	ErrSessionBusy = errors.New("chat session is busy")
)

// ChatConfig holds chat session defaults
type ChatConfig struct {
	DefaultMode   entity.EntryMode
	SubmitTimeout time.Duration
}

// MessageResult is the outcome of one user message
type MessageResult struct {
	Session *entity.ChatSession
	Reply   wizard.Reply
}

// ChatService manages wizard conversations
type ChatService interface {
	StartSession(ctx context.Context, ownerID string, mode entity.EntryMode) (*entity.ChatSession, error)
	GetSession(ctx context.Context, ownerID, sessionID string) (*entity.ChatSession, error)
	SendMessage(ctx context.Context, ownerID, sessionID, text string) (*MessageResult, error)
	CloseSession(ctx context.Context, ownerID, sessionID string) error
	SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error)
}

type chatServiceImpl struct {
	store      port.SessionStore
	deps       wizard.Deps
	dispatcher dispatcher.Dispatcher
	config     ChatConfig
	logger     Logger
	now        func() time.Time

	locks sync.Map // session ID -> *sync.Mutex
}

// NewChatService creates a new ChatService
func NewChatService(
	store port.SessionStore,
	deps wizard.Deps,
	eventDispatcher dispatcher.Dispatcher,
	config ChatConfig,
	logger Logger,
) ChatService {
	if !config.DefaultMode.IsValid() {
		config.DefaultMode = entity.EntryModeGuided
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &chatServiceImpl{
		store:      store,
		deps:       deps,
		dispatcher: eventDispatcher,
		config:     config,
		logger:     logger,
		now:        now,
	}
}

// StartSession creates a wizard conversation and stores its greeting
func (s *chatServiceImpl) StartSession(ctx context.Context, ownerID string, mode entity.EntryMode) (*entity.ChatSession, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner is required")
	}
	if mode == "" {
		mode = s.config.DefaultMode
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("invalid entry mode %q", mode)
	}

	w, err := wizard.New(s.deps, wizard.Options{
		OwnerID:       ownerID,
		Mode:          mode,
		SubmitTimeout: s.config.SubmitTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("create wizard: %w", err)
	}
	w.Start()

	session := w.Snapshot()
	session.ID = uuid.NewString()
	session.CreatedAt = s.now()
	session.UpdatedAt = session.CreatedAt

	if err := s.store.Save(ctx, &session); err != nil {
		s.logger.Error("Failed to save session", "session_id", session.ID, "error", err)
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.logger.Info("Chat session started", "session_id", session.ID, "owner_id", ownerID, "mode", mode)
	s.publish(ctx, event.NewEvent(event.TypeSessionStarted, session.ID, ownerID, map[string]interface{}{
		event.KeyMode: string(mode),
	}))

	return &session, nil
}

// GetSession returns a session owned by ownerID
func (s *chatServiceImpl) GetSession(ctx context.Context, ownerID, sessionID string) (*entity.ChatSession, error) {
	return s.load(ctx, ownerID, sessionID)
}

// SendMessage feeds one user message to the session's wizard.
// Only one message per session is processed at a time.
func (s *chatServiceImpl) SendMessage(ctx context.Context, ownerID, sessionID, text string) (*MessageResult, error) {
	lock := s.lockFor(sessionID)
	if !lock.TryLock() {
		return nil, ErrSessionBusy
	}
	defer lock.Unlock()

	session, err := s.load(ctx, ownerID, sessionID)
	if err != nil {
		s.locks.CompareAndDelete(sessionID, lock)
		return nil, err
	}

	w, err := wizard.Restore(s.deps, session, s.config.SubmitTimeout)
	if err != nil {
		s.logger.Error("Failed to restore wizard", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("restore session: %w", err)
	}

	reply := w.Handle(ctx, text)

	updated := w.Snapshot()
	updated.ID = session.ID
	updated.CreatedAt = session.CreatedAt
	updated.UpdatedAt = s.now()

	if err := s.store.Save(ctx, &updated); err != nil {
		s.logger.Error("Failed to save session", "session_id", sessionID, "error", err)
		return nil, fmt.Errorf("save session: %w", err)
	}

	s.publishReply(ctx, &updated, reply)

	return &MessageResult{Session: &updated, Reply: reply}, nil
}

// CloseSession deletes a session and its draft.
// A session with a message in flight is not closed.
func (s *chatServiceImpl) CloseSession(ctx context.Context, ownerID, sessionID string) error {
	if _, err := s.load(ctx, ownerID, sessionID); err != nil {
		return err
	}

	lock := s.lockFor(sessionID)
	if !lock.TryLock() {
		return ErrSessionBusy
	}
	defer lock.Unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.locks.CompareAndDelete(sessionID, lock)

	s.logger.Info("Chat session closed", "session_id", sessionID, "owner_id", ownerID)
	s.publish(ctx, event.NewEvent(event.TypeSessionClosed, sessionID, ownerID, nil))
	return nil
}

// SweepIdle deletes sessions not updated within maxIdle and returns how many were removed
func (s *chatServiceImpl) SweepIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	ids, err := s.store.ListIdle(ctx, s.now().Add(-maxIdle))
	if err != nil {
		return 0, fmt.Errorf("list idle sessions: %w", err)
	}

	removed := 0
	for _, id := range ids {
		lock := s.lockFor(id)
		if !lock.TryLock() {
			continue
		}
		err := s.store.Delete(ctx, id)
		if err == nil {
			s.locks.CompareAndDelete(id, lock)
		}
		lock.Unlock()
		if err != nil {
			s.logger.Error("Failed to delete idle session", "session_id", id, "error", err)
			continue
		}
		removed++
		s.publish(ctx, event.NewEvent(event.TypeSessionClosed, id, "", map[string]interface{}{event.KeyReason: "idle"}))
	}

	if removed > 0 {
		s.logger.Info("Idle chat sessions removed", "count", removed)
	}
	return removed, nil
}

func (s *chatServiceImpl) load(ctx context.Context, ownerID, sessionID string) (*entity.ChatSession, error) {
	session, err := s.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session.OwnerID != ownerID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *chatServiceImpl) lockFor(sessionID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *chatServiceImpl) publishReply(ctx context.Context, session *entity.ChatSession, reply wizard.Reply) {
	var evt *event.Event
	switch reply.Outcome {
	case wizard.OutcomeRejected:
		evt = event.NewEvent(event.TypeInputRejected, session.ID, session.OwnerID, map[string]interface{}{
			event.KeyState: reply.State.String(),
		})
	case wizard.OutcomePrefilled, wizard.OutcomeNeedDetail:
		payload := map[string]interface{}{event.KeyEmpty: reply.Outcome == wizard.OutcomeNeedDetail}
		if reply.Extraction != nil {
			payload[event.KeySource] = string(reply.Extraction.Source)
		}
		evt = event.NewEvent(event.TypeExtractionCompleted, session.ID, session.OwnerID, payload)
	case wizard.OutcomeSaved:
		payload := map[string]interface{}{event.KeyTripID: reply.TripID}
		if reply.Trip != nil {
			total, _ := reply.Trip.Total().Float64()
			payload[event.KeyTotal] = total
			if reply.Trip.TripType != nil {
				payload[event.KeyTripType] = reply.Trip.TripType.String()
			}
		}
		evt = event.NewEvent(event.TypeTripSaved, session.ID, session.OwnerID, payload)
	case wizard.OutcomeSaveFailed:
		evt = event.NewEvent(event.TypeTripSaveFailed, session.ID, session.OwnerID, map[string]interface{}{
			event.KeyError: reply.Err.Error(),
		})
	case wizard.OutcomeDiscarded:
		evt = event.NewEvent(event.TypeDraftDiscarded, session.ID, session.OwnerID, nil)
	default:
		return
	}
	s.publish(ctx, evt)
}

func (s *chatServiceImpl) publish(ctx context.Context, evt *event.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, evt); err != nil {
		s.logger.Error("Failed to dispatch event", "event_type", evt.Type, "session_id", evt.SessionID, "error", err)
	}
}
