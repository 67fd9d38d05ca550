package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingserrors "barberbook/internal/bookings/errors"
	"barberbook/internal/bookings/repository"
	"barberbook/internal/bookings/validator"
	"barberbook/pkg/config"
	apperrors "barberbook/pkg/errors"
	"barberbook/pkg/kafka"
	"barberbook/pkg/model"
	"barberbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"

	eventSource = "barberbook"
)

type BookingService interface {
	// CommitBooking durably persists a draft booking, failing with a
	// slot-taken error when the label was claimed first by someone else.
	// It satisfies the wizard's committer contract.
	CommitBooking(ctx context.Context, booking *model.Booking) error

	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	UpdateStatus(ctx context.Context, id string, updates *model.BookingUpdate) error
	Cancel(ctx context.Context, id string) error
	SearchByShopAndDate(ctx context.Context, shopID string, date string, limit int, offset int64) ([]*model.Booking, int64, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.SlotLockRepository
	validator *validator.BookingValidator
	events    *kafka.Producer // nil when event publishing is disabled
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.SlotLockRepository,
	validator *validator.BookingValidator,
	events *kafka.Producer,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

// CommitBooking is the single place a slot can be claimed. The advisory lock
// narrows the race window; the occupancy re-check inside the transaction
// closes it. Availability computed before this call is advisory only.
func (s *bookingService) CommitBooking(ctx context.Context, booking *model.Booking) error {
	s.applyDefaults(booking)
	s.sanitize(booking)
	if err := s.validate(booking); err != nil {
		return err
	}

	lockID, err := s.acquireSlotLock(ctx, booking.ShopID, booking.Date, booking.Slot)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		taken, err := s.repo.ExistsActiveBooking(sessCtx, booking.ShopID, booking.Date, booking.Slot)
		if err != nil {
			return apperrors.Internal("Failed to check slot occupancy", err)
		}
		if taken {
			return apperrors.SlotTaken(booking.ShopID, booking.Date, booking.Slot)
		}

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeSlotTaken) {
			s.cfg.Log.Warn("Booking lost the race for a slot",
				"shop_id", booking.ShopID,
				"date", booking.Date,
				"slot", booking.Slot,
			)
		} else {
			s.cfg.Log.Error("Failed to commit booking",
				"shop_id", booking.ShopID,
				"date", booking.Date,
				"slot", booking.Slot,
				"error", err,
			)
		}
		return err
	}

	s.cfg.Log.Info("Booking committed successfully",
		"id", booking.ID,
		"shop_id", booking.ShopID,
		"date", booking.Date,
		"slot", booking.Slot,
	)

	s.publishEvent(ctx, EventBookingCreated, booking)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, id string, updates *model.BookingUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.repo.UpdateStatus(ctx, id, updates.Status); err != nil {
		s.cfg.Log.Error("Failed to update booking status", "id", id, "error", err)
		return apperrors.Internal("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking status updated", "id", id, "status", updates.Status)

	booking.Status = updates.Status
	switch updates.Status {
	case model.StatusCancelled:
		s.publishEvent(ctx, EventBookingCancelled, booking)
	case model.StatusCompleted:
		s.publishEvent(ctx, EventBookingCompleted, booking)
	}
	return nil
}

// Cancel releases a slot by flipping the booking's status; the document
// itself is kept for history. The label becomes selectable again on the next
// availability computation.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	return s.UpdateStatus(ctx, id, &model.BookingUpdate{Status: model.StatusCancelled})
}

func (s *bookingService) SearchByShopAndDate(ctx context.Context, shopID string, date string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if shopID == "" || date == "" {
		return nil, 0, apperrors.InvalidInput("shop_id and date are required")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, 0, apperrors.InvalidInput("date must be in YYYY-MM-DD format")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByShopAndDate(ctx, shopID, date)
		if err != nil {
			s.cfg.Log.Error("Failed to count bookings by search",
				"shop_id", shopID,
				"date", date,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByShopAndDate(ctx, shopID, date, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search bookings",
				"shop_id", shopID,
				"date", date,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search bookings", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Booking search completed",
		"shop_id", shopID,
		"date", date,
		"count", len(bookings),
		"total_count", count,
	)
	return bookings, count, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.Slot = sanitizer.NormalizeSlotLabel(b.Slot)
	b.Customer.Name = sanitizer.NormalizeName(b.Customer.Name)
	b.Customer.Email = sanitizer.NormalizeEmail(b.Customer.Email)
	if b.Customer.Phone != "" {
		b.Customer.Phone = sanitizer.NormalizePhone(b.Customer.Phone)
	}
}

func (s *bookingService) applyDefaults(b *model.Booking) {
	if b.Status == "" {
		b.Status = model.StatusConfirmed
	}
}

func (s *bookingService) validate(booking *model.Booking) error {
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

// acquireSlotLock creates an advisory lock keyed by slot coordinates.
// Holding it does not claim the slot; it only serializes the commit path so
// the transactional occupancy check is decisive.
func (s *bookingService) acquireSlotLock(ctx context.Context, shopID, date, slot string) (string, error) {
	lockID := fmt.Sprintf("slot_lock_%s_%s_%s", shopID, date, slot)

	lock := &model.SlotLock{
		ID:        lockID,
		ExpiresAt: time.Now().Add(s.cfg.SlotLockTTL),
	}

	_, err := s.lockRepo.Create(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.SlotTaken(shopID, date, slot)
		}
		return "", apperrors.Internal("Failed to acquire slot lock", err)
	}

	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

// publishEvent emits a booking lifecycle event. Publishing is best effort:
// the booking is already durable, so a broker hiccup is logged, not
// propagated to the caller.
func (s *bookingService) publishEvent(ctx context.Context, eventType string, booking *model.Booking) {
	if s.events == nil {
		return
	}

	msg, err := kafka.NewMessage(booking.ID, eventType, eventSource, booking)
	if err != nil {
		s.cfg.Log.Error("Failed to encode booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
		return
	}

	if err := s.events.Publish(ctx, msg); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
		return
	}

	s.cfg.Log.Debug("Booking event published",
		"event_type", eventType,
		"booking_id", booking.ID,
	)
}
