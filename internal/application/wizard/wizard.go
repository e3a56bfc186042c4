package wizard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/garyjia/trip-expenses/internal/application/port"
	"github.com/garyjia/trip-expenses/internal/domain/classify"
	"github.com/garyjia/trip-expenses/internal/domain/entity"
	"github.com/garyjia/trip-expenses/internal/domain/field"
	"github.com/garyjia/trip-expenses/internal/domain/workflow"
)

// DefaultSubmitTimeout bounds the final persistence insert
const DefaultSubmitTimeout = 10 * time.Second

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Deps are the collaborators a wizard works with
type Deps struct {
	Gateway    port.TripGateway
	Extractor  port.TripExtractor
	Classifier *classify.Classifier
	Logger     Logger
	Now        func() time.Time
}

// Options configure one conversation
type Options struct {
	OwnerID       string
	Mode          entity.EntryMode
	SubmitTimeout time.Duration
}

// Outcome summarises what one input did
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeRejected   Outcome = "rejected"
	OutcomePrefilled  Outcome = "prefilled"
	OutcomeNeedDetail Outcome = "need_detail"
	OutcomeSaved      Outcome = "saved"
	OutcomeSaveFailed Outcome = "save_failed"
	OutcomeDiscarded  Outcome = "discarded"
)

// Reply is the result of handling one user input
type Reply struct {
	Outcome Outcome
	// State is the wizard state after the input
	State workflow.State
	// Messages are the assistant messages appended to the transcript
	Messages []entity.ChatMessage
	// TripID and Trip are set when a trip was saved
	TripID string
	Trip   *entity.TripDraft
	// Extraction is set when the input went through free-text extraction
	Extraction *port.Extraction
	// Rejection explains a recoverable re-prompt; it is not shown as an error
	Rejection error
	// Err is a user-visible failure; only persistence failures set it
	Err error
}

// Wizard drives one trip-entry conversation. It is not safe for concurrent use;
// callers serialise inputs per session.
type Wizard struct {
	deps       Deps
	opts       Options
	machine    workflow.StateMachine
	draft      entity.TripDraft
	transcript entity.Transcript
}

// New creates a wizard positioned at the first step with an empty draft
func New(deps Deps, opts Options) (*Wizard, error) {
	return build(deps, opts, workflow.StateAwaitingDate)
}

// Restore recreates a wizard from a stored session
func Restore(deps Deps, session *entity.ChatSession, submitTimeout time.Duration) (*Wizard, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if !session.State.IsValid() {
		return nil, fmt.Errorf("%w: %q", workflow.ErrInvalidState, session.State)
	}

	w, err := build(deps, Options{
		OwnerID:       session.OwnerID,
		Mode:          session.Mode,
		SubmitTimeout: submitTimeout,
	}, session.State)
	if err != nil {
		return nil, err
	}

	w.draft = *session.Draft.Clone()
	w.transcript = append(entity.Transcript(nil), session.Transcript...)
	return w, nil
}

func build(deps Deps, opts Options, initial workflow.State) (*Wizard, error) {
	if deps.Gateway == nil {
		return nil, fmt.Errorf("trip gateway is required")
	}
	if deps.Classifier == nil {
		deps.Classifier = classify.Default()
	}
	if deps.Logger == nil {
		deps.Logger = nopLogger{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if !opts.Mode.IsValid() {
		opts.Mode = entity.EntryModeGuided
	}
	if opts.Mode == entity.EntryModeFreeText && deps.Extractor == nil {
		return nil, fmt.Errorf("free-text mode requires an extractor")
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}

	w := &Wizard{deps: deps, opts: opts}
	w.machine = workflow.NewWizardMachine(initial, func(ctx context.Context) workflow.State {
		return w.firstMissing()
	})
	return w, nil
}

// State returns the current step
func (w *Wizard) State() workflow.State {
	return w.machine.State()
}

// Mode returns the entry mode
func (w *Wizard) Mode() entity.EntryMode {
	return w.opts.Mode
}

// Draft returns a copy of the trip collected so far
func (w *Wizard) Draft() entity.TripDraft {
	return *w.draft.Clone()
}

// Transcript returns a copy of the conversation so far
func (w *Wizard) Transcript() entity.Transcript {
	return append(entity.Transcript(nil), w.transcript...)
}

// Snapshot captures the conversation for storage. ID and timestamps are left to the caller.
func (w *Wizard) Snapshot() entity.ChatSession {
	return entity.ChatSession{
		OwnerID:    w.opts.OwnerID,
		Mode:       w.opts.Mode,
		State:      w.machine.State(),
		Draft:      w.Draft(),
		Transcript: w.Transcript(),
	}
}

// Start greets the user and asks the first question
func (w *Wizard) Start() []entity.ChatMessage {
	return append([]entity.ChatMessage{w.say(msgGreeting, nil)}, w.promptStart()...)
}

// Handle processes one raw user input to completion
func (w *Wizard) Handle(ctx context.Context, input string) Reply {
	w.record(entity.SpeakerUser, input, nil)

	state := w.machine.State()
	var reply Reply
	switch {
	case state == workflow.StateAwaitingConfirmation:
		reply = w.handleConfirmation(ctx, input)
	case state == workflow.StateAwaitingDate && w.opts.Mode == entity.EntryModeFreeText && w.draft.IsEmpty():
		reply = w.handleFreeText(ctx, input)
	default:
		reply = w.handleField(ctx, state, input)
	}

	reply.State = w.machine.State()
	return reply
}

func (w *Wizard) handleField(ctx context.Context, state workflow.State, input string) Reply {
	if err := w.apply(state, input); err != nil {
		w.deps.Logger.Info("Answer rejected",
			"owner_id", w.opts.OwnerID,
			"state", state,
			"reason", field.Reason(err),
		)
		return Reply{
			Outcome:   OutcomeRejected,
			Rejection: err,
			Messages:  []entity.ChatMessage{w.say(rejection(state, field.Reason(err)), nil)},
		}
	}

	if err := w.advance(ctx); err != nil {
		return w.internalError(err)
	}

	return Reply{Outcome: OutcomeAccepted, Messages: w.promptCurrent()}
}

func (w *Wizard) handleFreeText(ctx context.Context, input string) Reply {
	extraction := w.deps.Extractor.Extract(ctx, input)
	w.prefill(extraction.Trip)

	if w.draft.IsEmpty() {
		return Reply{
			Outcome:    OutcomeNeedDetail,
			Extraction: &extraction,
			Rejection:  ErrExtractionEmpty,
			Messages:   []entity.ChatMessage{w.say(msgNeedMoreDetail, nil)},
		}
	}

	if err := w.machine.Fire(ctx, workflow.TriggerPrefill); err != nil {
		return w.internalError(err)
	}

	var messages []entity.ChatMessage
	if w.machine.State() == workflow.StateAwaitingConfirmation {
		messages = w.promptCurrent()
	} else {
		messages = []entity.ChatMessage{
			w.say(Summary(&w.draft)+"\n\nFaltam alguns dados.\n"+Prompt(w.machine.State()), w.draft.Clone()),
		}
	}

	return Reply{Outcome: OutcomePrefilled, Extraction: &extraction, Messages: messages}
}

func (w *Wizard) handleConfirmation(ctx context.Context, input string) Reply {
	switch parseAnswer(input) {
	case answerYes:
		return w.submit(ctx)
	case answerNo:
		if err := w.machine.Fire(ctx, workflow.TriggerDiscard); err != nil {
			return w.internalError(err)
		}
		w.draft = entity.TripDraft{}
		messages := append([]entity.ChatMessage{w.say(msgDiscarded, nil)}, w.promptStart()...)
		return Reply{Outcome: OutcomeDiscarded, Messages: messages}
	default:
		return Reply{
			Outcome:   OutcomeRejected,
			Rejection: ErrInvalidAnswer,
			Messages:  []entity.ChatMessage{w.say(msgConfirmRetry, nil)},
		}
	}
}

func (w *Wizard) submit(ctx context.Context) Reply {
	payload := w.draft.ToInsertPayload(w.opts.OwnerID)

	submitCtx, cancel := context.WithTimeout(ctx, w.opts.SubmitTimeout)
	defer cancel()

	id, err := w.deps.Gateway.Insert(submitCtx, payload)
	if err != nil {
		w.deps.Logger.Error("Failed to save trip",
			"owner_id", w.opts.OwnerID,
			"error", err,
		)
		return Reply{
			Outcome:  OutcomeSaveFailed,
			Err:      fmt.Errorf("%w: %v", ErrPersistenceFailure, err),
			Messages: []entity.ChatMessage{w.say(msgSaveFailed, nil)},
		}
	}

	if err := w.machine.Fire(ctx, workflow.TriggerSaved); err != nil {
		return w.internalError(err)
	}

	saved := w.draft.Clone()
	w.draft = entity.TripDraft{}

	w.deps.Logger.Info("Trip saved",
		"owner_id", w.opts.OwnerID,
		"trip_id", id,
	)

	messages := append([]entity.ChatMessage{w.say(msgSaved, nil)}, w.promptStart()...)
	return Reply{Outcome: OutcomeSaved, TripID: id, Trip: saved, Messages: messages}
}

// advance moves past the answered step and any later step already filled by extraction
func (w *Wizard) advance(ctx context.Context) error {
	if err := w.machine.Fire(ctx, workflow.TriggerAccept); err != nil {
		return err
	}
	for s := w.machine.State(); s.CollectsField() && w.filled(s); s = w.machine.State() {
		if err := w.machine.Fire(ctx, workflow.TriggerAccept); err != nil {
			return err
		}
	}
	return nil
}

// apply validates input for state and stores it in the draft
func (w *Wizard) apply(state workflow.State, input string) error {
	switch state {
	case workflow.StateAwaitingDate:
		d, err := field.ParseDate(input)
		if err != nil {
			return err
		}
		w.draft.TravelDate = &d
	case workflow.StateAwaitingCountry:
		country, err := field.ParseCountry(input)
		if err != nil {
			return err
		}
		w.setCountry(country)
	case workflow.StateAwaitingCity:
		city, err := field.ParseCity(input)
		if err != nil {
			return err
		}
		w.draft.DestinationCity = &city
	case workflow.StateAwaitingTicketCost:
		v, err := field.ParseAmount(input)
		if err != nil {
			return err
		}
		w.draft.TicketCost = &v
	case workflow.StateAwaitingLodgingCost:
		v, err := field.ParseAmount(input)
		if err != nil {
			return err
		}
		w.draft.LodgingCost = &v
	case workflow.StateAwaitingAllowance:
		v, err := field.ParseAmount(input)
		if err != nil {
			return err
		}
		w.draft.DailyAllowance = &v
	case workflow.StateAwaitingCostCenter:
		cc, err := field.ParseCostCenter(input)
		if err != nil {
			return err
		}
		w.draft.CostCenter = &cc
	default:
		return fmt.Errorf("%w: %s does not collect a field", workflow.ErrInvalidState, state)
	}
	return nil
}

func (w *Wizard) setCountry(country string) {
	tripType := w.deps.Classifier.Classify(country)
	w.draft.DestinationCountry = &country
	w.draft.TripType = &tripType
}

// prefill copies extracted values into the draft after running them through the field validators.
// Values that fail validation are dropped.
func (w *Wizard) prefill(ex entity.ExtractedTrip) {
	drop := func(name string, err error) {
		w.deps.Logger.Info("Extracted value dropped", "field", name, "reason", field.Reason(err))
	}

	if ex.TravelDate != nil {
		if d, err := field.ParseLooseDate(*ex.TravelDate, w.deps.Now()); err == nil {
			w.draft.TravelDate = &d
		} else {
			drop(field.NameTravelDate, err)
		}
	}
	if ex.DestinationCountry != nil {
		if country, err := field.ParseCountry(*ex.DestinationCountry); err == nil {
			w.setCountry(country)
		} else {
			drop(field.NameDestinationCountry, err)
		}
	}
	if ex.DestinationCity != nil {
		if city, err := field.ParseCity(*ex.DestinationCity); err == nil {
			w.draft.DestinationCity = &city
		} else {
			drop(field.NameDestinationCity, err)
		}
	}
	for _, slot := range []struct {
		src *decimal.Decimal
		dst **decimal.Decimal
	}{
		{ex.TicketCost, &w.draft.TicketCost},
		{ex.LodgingCost, &w.draft.LodgingCost},
		{ex.DailyAllowance, &w.draft.DailyAllowance},
	} {
		if slot.src == nil {
			continue
		}
		if v, err := field.ParseAmount(slot.src.String()); err == nil {
			*slot.dst = &v
		} else {
			drop(field.NameAmount, err)
		}
	}
	if ex.CostCenter != nil {
		if cc, err := field.ParseCostCenter(*ex.CostCenter); err == nil {
			w.draft.CostCenter = &cc
		} else {
			drop(field.NameCostCenter, err)
		}
	}
}

func (w *Wizard) filled(s workflow.State) bool {
	switch s {
	case workflow.StateAwaitingDate:
		return w.draft.TravelDate != nil
	case workflow.StateAwaitingCountry:
		return w.draft.DestinationCountry != nil
	case workflow.StateAwaitingCity:
		return w.draft.DestinationCity != nil
	case workflow.StateAwaitingTicketCost:
		return w.draft.TicketCost != nil
	case workflow.StateAwaitingLodgingCost:
		return w.draft.LodgingCost != nil
	case workflow.StateAwaitingAllowance:
		return w.draft.DailyAllowance != nil
	case workflow.StateAwaitingCostCenter:
		return w.draft.CostCenter != nil
	default:
		return false
	}
}

// firstMissing is the first step whose field is still empty, or confirmation
func (w *Wizard) firstMissing() workflow.State {
	for _, s := range workflow.Sequence {
		if s.CollectsField() && !w.filled(s) {
			return s
		}
	}
	return workflow.StateAwaitingConfirmation
}

func (w *Wizard) promptCurrent() []entity.ChatMessage {
	state := w.machine.State()
	if state == workflow.StateAwaitingConfirmation {
		return []entity.ChatMessage{w.say(Summary(&w.draft)+"\n\n"+msgConfirmQuestion, w.draft.Clone())}
	}
	return []entity.ChatMessage{w.say(Prompt(state), nil)}
}

func (w *Wizard) promptStart() []entity.ChatMessage {
	if w.opts.Mode == entity.EntryModeFreeText {
		return []entity.ChatMessage{w.say(msgFreeTextIntro, nil)}
	}
	return []entity.ChatMessage{w.say(Prompt(workflow.StateAwaitingDate), nil)}
}

func (w *Wizard) internalError(err error) Reply {
	w.deps.Logger.Error("Wizard transition failed",
		"owner_id", w.opts.OwnerID,
		"state", w.machine.State(),
		"error", err,
	)
	return Reply{Outcome: OutcomeRejected, Rejection: err, Messages: []entity.ChatMessage{w.say(Prompt(w.machine.State()), nil)}}
}

func (w *Wizard) say(text string, draft *entity.TripDraft) entity.ChatMessage {
	return w.record(entity.SpeakerAssistant, text, draft)
}

func (w *Wizard) record(speaker entity.Speaker, text string, draft *entity.TripDraft) entity.ChatMessage {
	msg := entity.ChatMessage{
		Speaker:   speaker,
		Text:      text,
		Draft:     draft,
		Timestamp: w.deps.Now(),
	}
	w.transcript = w.transcript.Append(msg)
	return msg
}

type answer int

const (
	answerUnknown answer = iota
	answerYes
	answerNo
)

var (
	affirmativeAnswers = map[string]bool{"sim": true, "s": true, "yes": true, "y": true, "confirmar": true, "confirmo": true}
	negativeAnswers    = map[string]bool{"nao": true, "n": true, "no": true, "cancelar": true, "corrigir": true}
)

func parseAnswer(input string) answer {
	a := strings.Trim(field.Fold(input), " .!")
	switch {
	case affirmativeAnswers[a]:
		return answerYes
	case negativeAnswers[a]:
		return answerNo
	default:
		return answerUnknown
	}
}
