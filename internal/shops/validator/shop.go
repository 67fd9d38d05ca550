package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"barberbook/pkg/logger"
	"barberbook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type ShopValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewShopValidator(log *logger.Logger) *ShopValidator {
	v := validator.New()

	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}
	if err := v.RegisterValidation("slot_schedule", validateSlotSchedule); err != nil {
		log.Fatal("Failed to register 'slot_schedule' validator", "error", err)
	}

	log.Info("Shop validator initialized successfully")

	return &ShopValidator{
		validate: v,
		logger:   log,
	}
}

// validateClockTime accepts zero-padded 24-hour HH:MM strings. The same
// strings become slot labels, so looser formats ("9:00") are rejected even
// though time.Parse would accept them.
func validateClockTime(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 5 {
		return false
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return false
	}
	return true
}

// validateSlotSchedule enforces the cross-field rule the tag syntax cannot
// express: the weekday window must be non-inverted. An empty window
// (start == end) is allowed and yields no slots.
func validateSlotSchedule(fl validator.FieldLevel) bool {
	cfg, ok := fl.Field().Interface().(model.ScheduleConfig)
	if !ok {
		return false
	}

	start, errStart := time.Parse("15:04", cfg.Weekday.StartTime)
	end, errEnd := time.Parse("15:04", cfg.Weekday.EndTime)
	if errStart != nil || errEnd != nil {
		// The dive into WeekdayConfig's clock_time tags reports the
		// format problem with a better field name.
		return true
	}
	return !end.Before(start)
}

func (v *ShopValidator) Validate(shop *model.Shop) error {
	if err := v.validate.Struct(shop); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ShopValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "e164":
			message = fmt.Sprintf("%s must be a phone number in E.164 format", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid object ID", err.Field())
		case "uuid4":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "clock_time":
			message = fmt.Sprintf("%s must be in zero-padded 24-hour HH:MM format", err.Field())
		case "slot_schedule":
			message = "weekday end_time must not be before start_time"
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
