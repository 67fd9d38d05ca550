// Package wizard implements the client-visible booking flow as an explicit
// state machine: service selection, date, slot, contact details, submission.
//
// The wizard holds a draft booking and drives the availability engine; it
// owns no persistence. Any UI layer (reactive frontend, plain event
// listeners, or a server-rendered form flow) can drive it through method
// calls and observe the state it exposes.
package wizard

import (
	"context"
	"sync"
	"time"

	"barberbook/internal/availability"
	apperrors "barberbook/pkg/errors"
	"barberbook/pkg/logger"
	"barberbook/pkg/model"
	"barberbook/pkg/sanitizer"

	"github.com/go-playground/validator/v10"
)

type State string

const (
	StateSelectingServices State = "selecting_services"
	StateSelectingDate     State = "selecting_date"
	StateSelectingSlot     State = "selecting_slot"
	StateEnteringContact   State = "entering_contact"
	StateSubmitting        State = "submitting"
	StateConfirmed         State = "confirmed"
)

// SlotSource returns the labels of non-cancelled bookings for a shop and
// date. The result is a point-in-time snapshot and may already be stale by
// the time slots are rendered.
type SlotSource interface {
	FindBookedLabels(ctx context.Context, shopID string, date string) ([]string, error)
}

// Committer durably persists a draft booking. It must fail with a
// conflict-coded error when the slot is taken at commit time, even if the
// availability engine reported it free.
type Committer interface {
	CommitBooking(ctx context.Context, booking *model.Booking) error
}

// Draft accumulates the client's selections for one booking attempt.
type Draft struct {
	Services []model.Service `json:"services"`
	Date     string          `json:"date,omitempty"`
	Slot     string          `json:"slot,omitempty"`
	Customer model.Customer  `json:"customer"`
}

type Wizard struct {
	mu        sync.Mutex
	shop      *model.Shop
	slots     SlotSource
	committer Committer
	validate  *validator.Validate
	log       *logger.Logger

	state   State
	draft   Draft
	offered []availability.TimeSlot
	busy    bool
	booking *model.Booking
}

func New(shop *model.Shop, slots SlotSource, committer Committer, log *logger.Logger) *Wizard {
	return &Wizard{
		shop:      shop,
		slots:     slots,
		committer: committer,
		validate:  validator.New(),
		log:       log,
		state:     StateSelectingServices,
	}
}

// ShopID identifies the shop this wizard books against. Immutable for the
// session's lifetime.
func (w *Wizard) ShopID() string {
	return w.shop.ID
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the accumulated selections.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	draft := w.draft
	draft.Services = append([]model.Service(nil), w.draft.Services...)
	return draft
}

// OfferedSlots returns the slots computed for the currently selected date.
func (w *Wizard) OfferedSlots() []availability.TimeSlot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]availability.TimeSlot(nil), w.offered...)
}

// Booking returns the persisted booking once the wizard is confirmed.
func (w *Wizard) Booking() *model.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.booking
}

// AddService appends a catalog service snapshot to the draft. Zero or more
// services may be accumulated before confirming.
func (w *Wizard) AddService(serviceID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureEditable(); err != nil {
		return err
	}

	for _, s := range w.draft.Services {
		if s.ID == serviceID {
			return nil // already selected
		}
	}
	for _, s := range w.shop.Services {
		if s.ID == serviceID {
			w.draft.Services = append(w.draft.Services, s)
			return nil
		}
	}
	return ErrUnknownService
}

func (w *Wizard) RemoveService(serviceID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureEditable(); err != nil {
		return err
	}

	for i, s := range w.draft.Services {
		if s.ID == serviceID {
			w.draft.Services = append(w.draft.Services[:i], w.draft.Services[i+1:]...)
			return nil
		}
	}
	return ErrUnknownService
}

// ConfirmServices moves on to date selection. The transition is explicit
// rather than automatic so clients can pick multiple services first.
func (w *Wizard) ConfirmServices() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureEditable(); err != nil {
		return err
	}
	if w.state == StateSelectingServices {
		w.state = StateSelectingDate
	}
	return nil
}

// SelectDate records a calendar date, clears any previously chosen slot
// (a new date invalidates it), refetches booked labels, and recomputes the
// offered slots. Booked labels are fetched fresh on every call to keep
// staleness to a minimum.
func (w *Wizard) SelectDate(ctx context.Context, date string) error {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	w.mu.Lock()
	if err := w.ensureEditable(); err != nil {
		w.mu.Unlock()
		return err
	}
	shopID := w.shop.ID
	schedule := w.shop.Schedule
	w.mu.Unlock()

	labels, err := w.slots.FindBookedLabels(ctx, shopID, date)
	if err != nil {
		return err
	}
	offered, err := availability.GenerateSlots(day, schedule, availability.BookedSet(labels))
	if err != nil {
		return apperrors.Internal("Failed to compute availability", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureEditable(); err != nil {
		return err
	}
	w.draft.Date = date
	w.draft.Slot = ""
	w.offered = offered
	w.state = StateSelectingSlot
	return nil
}

// RefreshSlots recomputes availability for the already selected date. Used
// after a commit conflict, when the engine must be re-invoked with fresh
// booked labels.
func (w *Wizard) RefreshSlots(ctx context.Context) error {
	w.mu.Lock()
	date := w.draft.Date
	w.mu.Unlock()

	if date == "" {
		return ErrNoDateSelected
	}
	return w.SelectDate(ctx, date)
}

// SelectSlot picks an offered slot. Picking an unavailable slot is rejected
// with no state transition; the UI disables taken slots, but the machine
// does not trust it to.
func (w *Wizard) SelectSlot(label string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureEditable(); err != nil {
		return err
	}
	if w.draft.Date == "" {
		return ErrNoDateSelected
	}

	for _, slot := range w.offered {
		if slot.Label != label {
			continue
		}
		if !slot.Available {
			return ErrSlotUnavailable
		}
		w.draft.Slot = label
		w.state = StateEnteringContact
		return nil
	}
	return ErrUnknownSlot
}

// EnterContact stores the customer's contact details after validation.
func (w *Wizard) EnterContact(customer model.Customer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ensureEditable(); err != nil {
		return err
	}
	if w.draft.Slot == "" {
		return ErrInvalidTransition
	}

	customer.Name = sanitizer.NormalizeName(customer.Name)
	customer.Email = sanitizer.NormalizeEmail(customer.Email)
	if customer.Phone != "" {
		customer.Phone = sanitizer.NormalizePhone(customer.Phone)
	}
	if err := w.validate.Struct(customer); err != nil {
		return apperrors.Validation("Contact details are invalid", map[string]any{
			"error": err.Error(),
		})
	}

	w.draft.Customer = customer
	w.state = StateEnteringContact
	return nil
}

// Submit dispatches the draft to the commit collaborator. The busy flag
// rejects a second submission while one is in flight. On a slot conflict the
// wizard returns to slot selection with the contact details preserved; on
// any other failure it stays on the contact step so nothing is re-entered.
func (w *Wizard) Submit(ctx context.Context) (*model.Booking, error) {
	w.mu.Lock()
	if w.busy {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if w.state != StateEnteringContact {
		w.mu.Unlock()
		return nil, ErrInvalidTransition
	}
	if err := w.validate.Struct(w.draft.Customer); err != nil {
		w.mu.Unlock()
		return nil, apperrors.Validation("Contact details are invalid", map[string]any{
			"error": err.Error(),
		})
	}

	booking := &model.Booking{
		ShopID:   w.shop.ID,
		Services: append([]model.Service(nil), w.draft.Services...),
		Date:     w.draft.Date,
		Slot:     w.draft.Slot,
		Customer: w.draft.Customer,
		Status:   model.StatusConfirmed,
	}
	w.busy = true
	w.state = StateSubmitting
	w.mu.Unlock()

	// The commit cannot be cancelled once dispatched; a late resolution
	// after the caller has moved on resolves against this wizard only.
	err := w.committer.CommitBooking(ctx, booking)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.busy = false

	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeSlotTaken) || apperrors.HasCode(err, apperrors.CodeConflict) {
			// Lost the race for the slot: back to slot selection with a
			// stale board; the caller refreshes via RefreshSlots.
			w.log.Warn("Booking commit conflicted, returning to slot selection",
				"shop_id", w.shop.ID,
				"date", w.draft.Date,
				"slot", w.draft.Slot,
			)
			w.draft.Slot = ""
			w.state = StateSelectingSlot
			return nil, err
		}
		w.log.Error("Booking commit failed",
			"shop_id", w.shop.ID,
			"date", w.draft.Date,
			"error", err,
		)
		w.state = StateEnteringContact
		return nil, err
	}

	w.booking = booking
	w.state = StateConfirmed
	return booking, nil
}

// Reset discards all draft state, enabling a new booking attempt without
// rebuilding the wizard.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.busy {
		return // an in-flight submit owns the draft until it resolves
	}
	w.draft = Draft{}
	w.offered = nil
	w.booking = nil
	w.state = StateSelectingServices
}

// ensureEditable rejects draft mutation while a submit is in flight or
// after confirmation. Earlier steps may be revisited freely: re-entering a
// previous step must not corrupt the draft.
func (w *Wizard) ensureEditable() error {
	if w.busy || w.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	if w.state == StateConfirmed {
		return ErrInvalidTransition
	}
	return nil
}
