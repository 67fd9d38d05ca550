package wizard

import (
	"context"
	"errors"
	"testing"

	apperrors "barberbook/pkg/errors"
	"barberbook/pkg/logger"
	"barberbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlotSource struct {
	labels []string
	err    error
	calls  int
}

func (f *fakeSlotSource) FindBookedLabels(_ context.Context, _ string, _ string) ([]string, error) {
	f.calls++
	return f.labels, f.err
}

type fakeCommitter struct {
	err   error
	calls int
	got   *model.Booking
}

func (f *fakeCommitter) CommitBooking(_ context.Context, booking *model.Booking) error {
	f.calls++
	f.got = booking
	if f.err != nil {
		return f.err
	}
	booking.ID = "64f000000000000000000099"
	return nil
}

type blockingCommitter struct {
	started chan struct{}
	release chan struct{}
}

func (c *blockingCommitter) CommitBooking(_ context.Context, _ *model.Booking) error {
	close(c.started)
	<-c.release
	return nil
}

func testShop() *model.Shop {
	return &model.Shop{
		ID:      "64f000000000000000000001",
		Name:    "Fade Factory",
		City:    "Haifa",
		Address: "12 Herzl St",
		Schedule: model.ScheduleConfig{
			Weekday: model.WeekdayConfig{StartTime: "09:00", EndTime: "12:00", SlotIntervalMin: 30},
			Weekend: model.WeekendConfig{SlotsCount: 4},
		},
		Services: []model.Service{
			{ID: "a7f5f35426b927411fc92b1f2a4b0c11", Name: "Haircut", DurationMin: 30, PriceCents: 8000},
			{ID: "b8e6e46537c038522fda3c2a3b5c1d22", Name: "Beard Trim", DurationMin: 15, PriceCents: 4000},
		},
	}
}

func testCustomer() model.Customer {
	return model.Customer{
		Name:  "Dana Levi",
		Email: "dana@example.com",
	}
}

// 2025-09-03 is a Wednesday: weekday interval mode, slots 09:00..11:30.
const testDate = "2025-09-03"

func TestWizard_HappyPath(t *testing.T) {
	shop := testShop()
	source := &fakeSlotSource{labels: []string{"09:30"}}
	committer := &fakeCommitter{}
	w := New(shop, source, committer, logger.Discard())

	require.Equal(t, StateSelectingServices, w.State())

	require.NoError(t, w.AddService(shop.Services[0].ID))
	require.NoError(t, w.AddService(shop.Services[1].ID))
	require.NoError(t, w.ConfirmServices())
	require.Equal(t, StateSelectingDate, w.State())

	require.NoError(t, w.SelectDate(context.Background(), testDate))
	require.Equal(t, StateSelectingSlot, w.State())

	offered := w.OfferedSlots()
	require.Len(t, offered, 6)
	for _, slot := range offered {
		if slot.Label == "09:30" {
			assert.False(t, slot.Available)
		} else {
			assert.True(t, slot.Available)
		}
	}

	require.NoError(t, w.SelectSlot("10:00"))
	require.Equal(t, StateEnteringContact, w.State())

	require.NoError(t, w.EnterContact(testCustomer()))

	booking, err := w.Submit(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateConfirmed, w.State())

	require.NotNil(t, committer.got)
	assert.Equal(t, shop.ID, booking.ShopID)
	assert.Equal(t, testDate, booking.Date)
	assert.Equal(t, "10:00", booking.Slot)
	assert.Equal(t, model.StatusConfirmed, booking.Status)
	assert.Len(t, booking.Services, 2)
	assert.Equal(t, "Haircut", booking.Services[0].Name)
	assert.Same(t, booking, w.Booking())
}

func TestWizard_NewDateClearsSelectedSlot(t *testing.T) {
	w := New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard())

	require.NoError(t, w.ConfirmServices())
	require.NoError(t, w.SelectDate(context.Background(), testDate))
	require.NoError(t, w.SelectSlot("09:00"))
	require.Equal(t, "09:00", w.Draft().Slot)

	// 2025-09-04 is a Thursday.
	require.NoError(t, w.SelectDate(context.Background(), "2025-09-04"))
	assert.Empty(t, w.Draft().Slot, "selecting a new date must clear the slot")
	assert.Equal(t, StateSelectingSlot, w.State())
}

func TestWizard_RefetchesLabelsPerDateSelection(t *testing.T) {
	source := &fakeSlotSource{}
	w := New(testShop(), source, &fakeCommitter{}, logger.Discard())

	require.NoError(t, w.ConfirmServices())
	require.NoError(t, w.SelectDate(context.Background(), testDate))
	require.NoError(t, w.SelectDate(context.Background(), "2025-09-04"))
	require.NoError(t, w.RefreshSlots(context.Background()))

	assert.Equal(t, 3, source.calls, "booked labels must be refetched on every date selection")
}

func TestWizard_SelectSlotRejections(t *testing.T) {
	source := &fakeSlotSource{labels: []string{"09:30"}}
	w := New(testShop(), source, &fakeCommitter{}, logger.Discard())

	require.NoError(t, w.ConfirmServices())
	require.NoError(t, w.SelectDate(context.Background(), testDate))

	err := w.SelectSlot("09:30")
	require.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, StateSelectingSlot, w.State(), "rejected selection must not transition")
	assert.Empty(t, w.Draft().Slot)

	err = w.SelectSlot("23:45")
	require.ErrorIs(t, err, ErrUnknownSlot)
	assert.Equal(t, StateSelectingSlot, w.State())
}

func TestWizard_ContactValidation(t *testing.T) {
	tests := []struct {
		name     string
		customer model.Customer
	}{
		{"empty name", model.Customer{Name: "", Email: "dana@example.com"}},
		{"bad email", model.Customer{Name: "Dana Levi", Email: "not-an-email"}},
		{"missing email", model.Customer{Name: "Dana Levi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard())
			require.NoError(t, w.ConfirmServices())
			require.NoError(t, w.SelectDate(context.Background(), testDate))
			require.NoError(t, w.SelectSlot("09:00"))

			err := w.EnterContact(tt.customer)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
		})
	}
}

func TestWizard_CommitConflictReturnsToSlotSelection(t *testing.T) {
	shop := testShop()
	source := &fakeSlotSource{}
	committer := &fakeCommitter{err: apperrors.SlotTaken(shop.ID, testDate, "10:00")}
	w := New(shop, source, committer, logger.Discard())

	require.NoError(t, w.ConfirmServices())
	require.NoError(t, w.SelectDate(context.Background(), testDate))
	require.NoError(t, w.SelectSlot("10:00"))
	require.NoError(t, w.EnterContact(testCustomer()))

	_, err := w.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSlotTaken))

	assert.Equal(t, StateSelectingSlot, w.State())
	draft := w.Draft()
	assert.Empty(t, draft.Slot, "conflicted slot must be cleared")
	assert.Equal(t, "Dana Levi", draft.Customer.Name, "contact details must survive a conflict")
	assert.Equal(t, testDate, draft.Date)

	// Fresh labels now report the lost slot as taken.
	source.labels = []string{"10:00"}
	require.NoError(t, w.RefreshSlots(context.Background()))
	for _, slot := range w.OfferedSlots() {
		if slot.Label == "10:00" {
			assert.False(t, slot.Available)
		}
	}
}

func TestWizard_GenericCommitFailurePreservesDraft(t *testing.T) {
	committer := &fakeCommitter{err: apperrors.Internal("store unreachable", errors.New("dial tcp: refused"))}
	w := New(testShop(), &fakeSlotSource{}, committer, logger.Discard())

	require.NoError(t, w.ConfirmServices())
	require.NoError(t, w.SelectDate(context.Background(), testDate))
	require.NoError(t, w.SelectSlot("10:00"))
	require.NoError(t, w.EnterContact(testCustomer()))

	_, err := w.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, StateEnteringContact, w.State())
	draft := w.Draft()
	assert.Equal(t, "10:00", draft.Slot, "slot survives a non-conflict failure")
	assert.Equal(t, "Dana Levi", draft.Customer.Name)

	// The same form can be resubmitted without re-entering anything.
	committer.err = nil
	_, err = w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, w.State())
	assert.Equal(t, 2, committer.calls)
}

func TestWizard_DoubleSubmitRejected(t *testing.T) {
	committer := &blockingCommitter{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	w := New(testShop(), &fakeSlotSource{}, committer, logger.Discard())

	require.NoError(t, w.ConfirmServices())
	require.NoError(t, w.SelectDate(context.Background(), testDate))
	require.NoError(t, w.SelectSlot("10:00"))
	require.NoError(t, w.EnterContact(testCustomer()))

	done := make(chan error, 1)
	go func() {
		_, err := w.Submit(context.Background())
		done <- err
	}()

	<-committer.started
	assert.Equal(t, StateSubmitting, w.State())

	_, err := w.Submit(context.Background())
	require.ErrorIs(t, err, ErrSubmitInFlight)

	require.ErrorIs(t, w.AddService("anything"), ErrSubmitInFlight)

	close(committer.release)
	require.NoError(t, <-done)
	assert.Equal(t, StateConfirmed, w.State())
}

func TestWizard_ResetStartsOver(t *testing.T) {
	w := New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard())

	require.NoError(t, w.AddService(testShop().Services[0].ID))
	require.NoError(t, w.ConfirmServices())
	require.NoError(t, w.SelectDate(context.Background(), testDate))
	require.NoError(t, w.SelectSlot("10:00"))
	require.NoError(t, w.EnterContact(testCustomer()))
	_, err := w.Submit(context.Background())
	require.NoError(t, err)

	// A confirmed wizard accepts no further edits until reset.
	require.ErrorIs(t, w.ConfirmServices(), ErrInvalidTransition)

	w.Reset()
	assert.Equal(t, StateSelectingServices, w.State())
	assert.Empty(t, w.Draft().Services)
	assert.Empty(t, w.Draft().Date)
	assert.Nil(t, w.Booking())
}

func TestWizard_AddUnknownService(t *testing.T) {
	w := New(testShop(), &fakeSlotSource{}, &fakeCommitter{}, logger.Discard())
	require.ErrorIs(t, w.AddService("no-such-service"), ErrUnknownService)
}
