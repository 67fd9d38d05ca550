package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"barberbook/internal/availability"
	shoperrors "barberbook/internal/shops/errors"
	"barberbook/internal/shops/repository"
	"barberbook/internal/shops/validator"
	"barberbook/pkg/config"
	apperrors "barberbook/pkg/errors"
	"barberbook/pkg/model"
	"barberbook/pkg/sanitizer"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookedLabelSource reports which slot labels are taken for a shop and date.
// Implemented by the bookings repository; shops never read the bookings
// collection directly.
type BookedLabelSource interface {
	FindBookedLabels(ctx context.Context, shopID string, date string) ([]string, error)
}

type ShopService interface {
	Create(ctx context.Context, shop *model.Shop) error
	GetByID(ctx context.Context, id string) (*model.Shop, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Shop, int64, error)
	Update(ctx context.Context, id string, updates *model.ShopUpdate) error
	Delete(ctx context.Context, id string) error

	SearchByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Shop, int64, error)

	AddService(ctx context.Context, shopID string, svc *model.Service) (*model.Shop, error)
	RemoveService(ctx context.Context, shopID string, serviceID string) (*model.Shop, error)

	GetDailySlots(ctx context.Context, shopID string, date time.Time) ([]availability.TimeSlot, error)
}

type shopService struct {
	repo      repository.ShopRepository
	booked    BookedLabelSource
	validator *validator.ShopValidator
	cfg       *config.Config
}

func NewShopService(
	repo repository.ShopRepository,
	booked BookedLabelSource,
	validator *validator.ShopValidator,
	cfg *config.Config,
) ShopService {
	return &shopService{
		repo:      repo,
		booked:    booked,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *shopService) Create(ctx context.Context, shop *model.Shop) error {
	s.sanitize(shop)
	s.applyDefaultsForNewShop(shop)

	if err := s.validator.Validate(shop); err != nil {
		s.cfg.Log.Warn("Shop validation failed",
			"name", shop.Name,
			"city", shop.City,
			"error", err,
		)
		return apperrors.Validation("Shop validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByNameAndCity(sessCtx, shop.Name, shop.City)
		if err != nil {
			return fmt.Errorf("failed to check for duplicates: %w", err)
		}

		if len(existing) > 0 {
			return apperrors.Conflict(fmt.Sprintf(
				"Shop with the same name already exists in %s (id: %s)",
				shop.City, existing[0].ID,
			))
		}

		if err := s.repo.Create(sessCtx, shop); err != nil {
			return fmt.Errorf("failed to create shop: %w", err)
		}

		return nil
	})

	if err != nil {
		s.cfg.Log.Error("Failed to create shop",
			"name", shop.Name,
			"city", shop.City,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Shop created successfully",
		"id", shop.ID,
		"name", shop.Name,
		"city", shop.City,
		"services", len(shop.Services),
	)

	return nil
}

func (s *shopService) GetByID(ctx context.Context, id string) (*model.Shop, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Shop ID cannot be empty")
	}

	shop, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shoperrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Shop", id)
		}
		if errors.Is(err, shoperrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid shop ID format")
		}
		s.cfg.Log.Error("Failed to get shop by ID",
			"id", id,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to retrieve shop", err)
	}

	return shop, nil
}

func (s *shopService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Shop, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var shops []*model.Shop
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.Count(ctx)
		if err != nil {
			s.cfg.Log.Error("Failed to count shops", "error", err)
			errCount = apperrors.Internal("Failed to count shops", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		shops, err = s.repo.FindAll(ctx, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to get all shops",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve shops", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return shops, count, nil
}

func (s *shopService) Update(ctx context.Context, id string, updates *model.ShopUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Shop ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shoperrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Shop", id)
		}
		if errors.Is(err, shoperrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid shop ID format")
		}
		return apperrors.Internal("Failed to check shop existence", err)
	}

	s.sanitizeUpdate(updates)
	merged := s.mergeShopUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		s.cfg.Log.Warn("Shop validation failed",
			"name", merged.Name,
			"id", id,
			"error", err,
		)
		return apperrors.Validation("Shop validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		s.cfg.Log.Error("Failed to update shop",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to update shop", err)
	}
	s.cfg.Log.Info("Shop updated successfully",
		"id", id,
		"name", merged.Name,
	)

	return nil
}

func (s *shopService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Shop ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, shoperrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Shop", id)
		}
		if errors.Is(err, shoperrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid shop ID format")
		}
		s.cfg.Log.Error("Failed to delete shop",
			"id", id,
			"error", err,
		)
		return apperrors.Internal("Failed to delete shop", err)
	}

	s.cfg.Log.Info("Shop deleted successfully", "id", id)

	return nil
}

func (s *shopService) SearchByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Shop, int64, error) {
	if city == "" {
		return nil, 0, apperrors.InvalidInput("City cannot be empty")
	}

	original := city
	city = sanitizer.NormalizeCity(city)
	if city == "" {
		s.cfg.Log.Warn("Search city normalized to empty", "original_city", original)
		return nil, 0, apperrors.InvalidInput("City resulted in no valid value after normalization")
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var shops []*model.Shop
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		count, err = s.repo.CountByCity(ctx, city)
		if err != nil {
			s.cfg.Log.Error("Failed to count shops by city", "city", city, "error", err)
			errCount = apperrors.Internal("Failed to count shops", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
		defer cancel()
		shops, err = s.repo.SearchByCity(ctx, city, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search shops by city", "city", city, "error", err)
			errFind = apperrors.Internal("Failed to search shops", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.cfg.Log.Debug("Shop search completed",
		"city", city,
		"results_count", len(shops),
	)

	return shops, count, nil
}

func (s *shopService) AddService(ctx context.Context, shopID string, svc *model.Service) (*model.Shop, error) {
	shop, err := s.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	svc.ID = uuid.NewString()
	svc.Name = sanitizer.NormalizeName(svc.Name)
	shop.Services = append(shop.Services, *svc)

	if err := s.validator.Validate(shop); err != nil {
		return nil, apperrors.Validation("Service validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	if _, err := s.repo.Update(ctx, shopID, shop); err != nil {
		s.cfg.Log.Error("Failed to add service to shop",
			"shop_id", shopID,
			"service_name", svc.Name,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to add service", err)
	}

	s.cfg.Log.Info("Service added to shop",
		"shop_id", shopID,
		"service_id", svc.ID,
		"service_name", svc.Name,
	)

	return shop, nil
}

func (s *shopService) RemoveService(ctx context.Context, shopID string, serviceID string) (*model.Shop, error) {
	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	shop, err := s.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	found := false
	services := make([]model.Service, 0, len(shop.Services))
	for _, svc := range shop.Services {
		if svc.ID == serviceID {
			found = true
			continue
		}
		services = append(services, svc)
	}
	if !found {
		return nil, apperrors.NotFoundWithID("Service", serviceID)
	}
	shop.Services = services

	if _, err := s.repo.Update(ctx, shopID, shop); err != nil {
		s.cfg.Log.Error("Failed to remove service from shop",
			"shop_id", shopID,
			"service_id", serviceID,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to remove service", err)
	}

	s.cfg.Log.Info("Service removed from shop",
		"shop_id", shopID,
		"service_id", serviceID,
	)

	return shop, nil
}

// GetDailySlots computes the slot board for one shop and date: the shop's
// schedule configuration run through the availability engine against the
// labels of its non-cancelled bookings.
func (s *shopService) GetDailySlots(ctx context.Context, shopID string, date time.Time) ([]availability.TimeSlot, error) {
	shop, err := s.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	labels, err := s.booked.FindBookedLabels(ctx, shopID, date.Format("2006-01-02"))
	if err != nil {
		s.cfg.Log.Error("Failed to load booked labels",
			"shop_id", shopID,
			"date", date.Format("2006-01-02"),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load booked slots", err)
	}

	slots, err := availability.GenerateSlots(date, shop.Schedule, availability.BookedSet(labels))
	if err != nil {
		// Reaching this means a malformed schedule slipped past validation.
		s.cfg.Log.Error("Failed to compute availability",
			"shop_id", shopID,
			"date", date.Format("2006-01-02"),
			"error", err,
		)
		return nil, apperrors.Internal("Failed to compute availability", err)
	}

	return slots, nil
}

func (s *shopService) sanitize(shop *model.Shop) {
	shop.Name = sanitizer.NormalizeName(shop.Name)
	shop.City = sanitizer.NormalizeCity(shop.City)
	shop.Address = sanitizer.TrimAndNormalize(shop.Address)
	if shop.Phone != "" {
		shop.Phone = sanitizer.NormalizePhone(shop.Phone)
	}
	for i := range shop.Services {
		shop.Services[i].Name = sanitizer.NormalizeName(shop.Services[i].Name)
	}
}

func (s *shopService) sanitizeUpdate(updates *model.ShopUpdate) {
	if updates.Name != "" {
		updates.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.City != "" {
		updates.City = sanitizer.NormalizeCity(updates.City)
	}
	if updates.Address != "" {
		updates.Address = sanitizer.TrimAndNormalize(updates.Address)
	}
	if updates.Phone != "" {
		updates.Phone = sanitizer.NormalizePhone(updates.Phone)
	}
}

// applyDefaultsForNewShop fills in the configured schedule defaults and
// mints IDs for catalog services that arrive without one.
func (s *shopService) applyDefaultsForNewShop(shop *model.Shop) {
	if shop.Schedule.Weekday.StartTime == "" {
		shop.Schedule.Weekday.StartTime = s.cfg.DefaultWeekdayStart
	}
	if shop.Schedule.Weekday.EndTime == "" {
		shop.Schedule.Weekday.EndTime = s.cfg.DefaultWeekdayEnd
	}
	if shop.Schedule.Weekday.SlotIntervalMin == 0 {
		shop.Schedule.Weekday.SlotIntervalMin = s.cfg.DefaultSlotIntervalMin
	}
	if shop.Schedule.Weekend.SlotsCount == 0 {
		shop.Schedule.Weekend.SlotsCount = s.cfg.DefaultWeekendSlots
	}
	for i := range shop.Services {
		if shop.Services[i].ID == "" {
			shop.Services[i].ID = uuid.NewString()
		}
	}
}

func (s *shopService) mergeShopUpdates(existing *model.Shop, updates *model.ShopUpdate) *model.Shop {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.City != "" {
		merged.City = updates.City
	}
	if updates.Address != "" {
		merged.Address = updates.Address
	}
	if updates.Phone != "" {
		merged.Phone = updates.Phone
	}
	if updates.Schedule != nil {
		merged.Schedule = *updates.Schedule
	}

	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	return &merged
}
