package service

import (
	"context"
	"testing"
	"time"

	"barberbook/internal/shops/validator"
	"barberbook/pkg/config"
	mongotx "barberbook/pkg/db/mongo"
	apperrors "barberbook/pkg/errors"
	"barberbook/pkg/logger"
	"barberbook/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockShopRepository struct {
	createFunc            func(ctx context.Context, shop *model.Shop) error
	findByIDFunc          func(ctx context.Context, id string) (*model.Shop, error)
	findAllFunc           func(ctx context.Context, limit int, offset int64) ([]*model.Shop, error)
	updateFunc            func(ctx context.Context, id string, shop *model.Shop) (*mongo.UpdateResult, error)
	findByNameAndCityFunc func(ctx context.Context, name string, city string) ([]*model.Shop, error)
	countFunc             func(ctx context.Context) (int64, error)
}

func (m *mockShopRepository) Create(ctx context.Context, shop *model.Shop) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, shop)
	}
	shop.ID = "64f000000000000000000001"
	return nil
}

func (m *mockShopRepository) FindByID(ctx context.Context, id string) (*model.Shop, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockShopRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Shop, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Shop{}, nil
}

func (m *mockShopRepository) Update(ctx context.Context, id string, shop *model.Shop) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, shop)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockShopRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (m *mockShopRepository) FindByNameAndCity(ctx context.Context, name string, city string) ([]*model.Shop, error) {
	if m.findByNameAndCityFunc != nil {
		return m.findByNameAndCityFunc(ctx, name, city)
	}
	return nil, nil
}

func (m *mockShopRepository) SearchByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Shop, error) {
	return []*model.Shop{}, nil
}

func (m *mockShopRepository) CountByCity(ctx context.Context, city string) (int64, error) {
	return 0, nil
}

func (m *mockShopRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockShopRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockBookedSource struct {
	labels []string
	err    error
}

func (m *mockBookedSource) FindBookedLabels(ctx context.Context, shopID string, date string) ([]string, error) {
	return m.labels, m.err
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                    logger.Discard(),
		ReadTimeout:            5 * time.Second,
		WriteTimeout:           5 * time.Second,
		DefaultWeekdayStart:    "09:00",
		DefaultWeekdayEnd:      "19:00",
		DefaultSlotIntervalMin: 30,
		DefaultWeekendSlots:    20,
	}
}

func newTestService(repo *mockShopRepository, booked *mockBookedSource) ShopService {
	if booked == nil {
		booked = &mockBookedSource{}
	}
	return NewShopService(repo, booked, validator.NewShopValidator(logger.Discard()), testConfig())
}

func TestCreate_AppliesScheduleDefaults(t *testing.T) {
	repo := &mockShopRepository{}
	svc := newTestService(repo, nil)

	shop := &model.Shop{
		Name:    "  fade   factory ",
		City:    "haifa",
		Address: "12 Herzl St",
		Services: []model.Service{
			{Name: "Haircut", DurationMin: 30, PriceCents: 8000},
		},
	}

	if err := svc.Create(context.Background(), shop); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if shop.Schedule.Weekday.StartTime != "09:00" || shop.Schedule.Weekday.EndTime != "19:00" {
		t.Errorf("expected default weekday window 09:00-19:00, got %s-%s",
			shop.Schedule.Weekday.StartTime, shop.Schedule.Weekday.EndTime)
	}
	if shop.Schedule.Weekday.SlotIntervalMin != 30 {
		t.Errorf("expected default interval 30, got %d", shop.Schedule.Weekday.SlotIntervalMin)
	}
	if shop.Schedule.Weekend.SlotsCount != 20 {
		t.Errorf("expected default weekend quota 20, got %d", shop.Schedule.Weekend.SlotsCount)
	}
	if shop.Services[0].ID == "" {
		t.Error("expected a minted service ID")
	}
	if shop.Name != "Fade Factory" {
		t.Errorf("expected normalized name, got %q", shop.Name)
	}
}

func TestCreate_DuplicateRejected(t *testing.T) {
	repo := &mockShopRepository{
		findByNameAndCityFunc: func(ctx context.Context, name string, city string) ([]*model.Shop, error) {
			return []*model.Shop{{ID: "64f000000000000000000007", Name: name, City: city}}, nil
		},
	}
	svc := newTestService(repo, nil)

	shop := &model.Shop{
		Name:    "Fade Factory",
		City:    "Haifa",
		Address: "12 Herzl St",
	}

	err := svc.Create(context.Background(), shop)
	if err == nil {
		t.Fatal("expected conflict error")
	}
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("expected conflict code, got: %v", err)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	repo := &mockShopRepository{}
	svc := newTestService(repo, nil)

	shop := &model.Shop{
		Name:    "Fade Factory",
		City:    "Haifa",
		Address: "12 Herzl St",
		Schedule: model.ScheduleConfig{
			Weekday: model.WeekdayConfig{StartTime: "19:00", EndTime: "09:00", SlotIntervalMin: 30},
		},
	}

	err := svc.Create(context.Background(), shop)
	if err == nil {
		t.Fatal("expected validation error for inverted window")
	}
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("expected validation code, got: %v", err)
	}
}

func TestGetAll_ConcurrentCountAndFind(t *testing.T) {
	repo := &mockShopRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Shop, error) {
			time.Sleep(10 * time.Millisecond)
			return []*model.Shop{
				{ID: "64f000000000000000000001", Name: "Shop 1"},
				{ID: "64f000000000000000000002", Name: "Shop 2"},
			}, nil
		},
	}
	svc := newTestService(repo, nil)

	for i := 0; i < 10; i++ {
		shops, count, err := svc.GetAll(context.Background(), 10, 0)
		if err != nil {
			t.Fatalf("iteration %d: unexpected error: %v", i, err)
		}
		if count != 42 {
			t.Errorf("iteration %d: expected count 42, got %d", i, count)
		}
		if len(shops) != 2 {
			t.Errorf("iteration %d: expected 2 shops, got %d", i, len(shops))
		}
	}
}

func TestGetAll_LimitNormalization(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	repo := &mockShopRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Shop, error) {
			gotLimit = limit
			gotOffset = offset
			return []*model.Shop{}, nil
		},
	}
	svc := newTestService(repo, nil)

	if _, _, err := svc.GetAll(context.Background(), -5, -20); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 {
		t.Errorf("expected limit normalized to 10, got %d", gotLimit)
	}
	if gotOffset != 0 {
		t.Errorf("expected offset normalized to 0, got %d", gotOffset)
	}
}

func TestUpdate_MergePreservesUnspecifiedFields(t *testing.T) {
	existing := &model.Shop{
		ID:      "64f000000000000000000001",
		Name:    "Fade Factory",
		City:    "Haifa",
		Address: "12 Herzl St",
		Phone:   "+972501234567",
		Schedule: model.ScheduleConfig{
			Weekday: model.WeekdayConfig{StartTime: "09:00", EndTime: "19:00", SlotIntervalMin: 30},
			Weekend: model.WeekendConfig{SlotsCount: 20},
		},
	}

	var updated *model.Shop
	repo := &mockShopRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Shop, error) {
			return existing, nil
		},
		updateFunc: func(ctx context.Context, id string, shop *model.Shop) (*mongo.UpdateResult, error) {
			updated = shop
			return &mongo.UpdateResult{MatchedCount: 1}, nil
		},
	}
	svc := newTestService(repo, nil)

	err := svc.Update(context.Background(), existing.ID, &model.ShopUpdate{Name: "New Fade Factory"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if updated.Name != "New Fade Factory" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if updated.City != "Haifa" || updated.Phone != "+972501234567" {
		t.Error("expected unspecified fields preserved")
	}
	if updated.Schedule.Weekday.StartTime != "09:00" {
		t.Error("expected schedule preserved")
	}
}

func TestGetDailySlots_MarksBookedLabels(t *testing.T) {
	shop := &model.Shop{
		ID:      "64f000000000000000000001",
		Name:    "Fade Factory",
		City:    "Haifa",
		Address: "12 Herzl St",
		Schedule: model.ScheduleConfig{
			Weekday: model.WeekdayConfig{StartTime: "09:00", EndTime: "12:00", SlotIntervalMin: 30},
			Weekend: model.WeekendConfig{SlotsCount: 5},
		},
	}
	repo := &mockShopRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Shop, error) {
			return shop, nil
		},
	}
	booked := &mockBookedSource{labels: []string{"09:30", "11:00"}}
	svc := newTestService(repo, booked)

	// 2025-09-03 is a Wednesday.
	date := time.Date(2025, time.September, 3, 0, 0, 0, 0, time.UTC)
	slots, err := svc.GetDailySlots(context.Background(), shop.ID, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		isBooked := slot.Label == "09:30" || slot.Label == "11:00"
		if slot.Available == isBooked {
			t.Errorf("slot %s: available=%v with booked=%v", slot.Label, slot.Available, isBooked)
		}
	}
}

func TestGetDailySlots_WeekendQuota(t *testing.T) {
	shop := &model.Shop{
		ID:      "64f000000000000000000001",
		Name:    "Fade Factory",
		City:    "Haifa",
		Address: "12 Herzl St",
		Schedule: model.ScheduleConfig{
			Weekday: model.WeekdayConfig{StartTime: "09:00", EndTime: "19:00", SlotIntervalMin: 30},
			Weekend: model.WeekendConfig{SlotsCount: 3},
		},
	}
	repo := &mockShopRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Shop, error) {
			return shop, nil
		},
	}
	svc := newTestService(repo, nil)

	// 2025-09-05 is a Friday.
	date := time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)
	slots, err := svc.GetDailySlots(context.Background(), shop.ID, date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 3 {
		t.Fatalf("expected 3 quota slots, got %d", len(slots))
	}
	if slots[0].Label != "Slot 1" || slots[2].Label != "Slot 3" {
		t.Errorf("expected quota labels, got %v", slots)
	}
}
