package validations

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
	pkgError "github.com/fbautopost/backend/pkg/error"
)

func validateRecurrence(recurrence domainScheduler.RecurrenceType) error {
	if recurrence == "" {
		return nil
	}
	if _, err := domainScheduler.ParseRecurrence(string(recurrence)); err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}

func ValidateScheduleText(ctx context.Context, request domainScheduler.ScheduleTextRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Message, validation.Required),
		validation.Field(&request.ScheduleTime, validation.Required),
		validation.Field(&request.Link, is.URL),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if err := validateMessage(request.Message); err != nil {
		return err
	}
	if err := validateRecurrence(request.Recurrence); err != nil {
		return err
	}
	if request.RecurrenceEnd != nil && !request.RecurrenceEnd.After(request.ScheduleTime) {
		return pkgError.ValidationError("recurrence_end must be after schedule_time")
	}
	return nil
}

func ValidateScheduleImage(ctx context.Context, request domainScheduler.ScheduleImageRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Message, validation.Required),
		validation.Field(&request.ImagePath, validation.Required),
		validation.Field(&request.ScheduleTime, validation.Required),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	if err := validateMessage(request.Message); err != nil {
		return err
	}
	if err := validateRecurrence(request.Recurrence); err != nil {
		return err
	}
	if request.RecurrenceEnd != nil && !request.RecurrenceEnd.After(request.ScheduleTime) {
		return pkgError.ValidationError("recurrence_end must be after schedule_time")
	}
	return nil
}

// ValidateScheduleUpdate checks only the fields that are present; an empty
// update is valid and just refreshes the record's updated_at.
func ValidateScheduleUpdate(ctx context.Context, request domainScheduler.UpdateRequest) error {
	if request.Message != nil {
		if *request.Message == "" {
			return pkgError.ValidationError("message cannot be blank")
		}
		if err := validateMessage(*request.Message); err != nil {
			return err
		}
	}
	if request.Link != nil && *request.Link != "" {
		if err := validation.Validate(*request.Link, is.URL); err != nil {
			return pkgError.ValidationError(fmt.Sprintf("link: %s", err.Error()))
		}
	}
	if request.Recurrence != nil {
		if _, err := domainScheduler.ParseRecurrence(string(*request.Recurrence)); err != nil {
			return pkgError.ValidationError(err.Error())
		}
	}
	if request.Status != nil {
		if _, err := domainScheduler.ParsePostStatus(string(*request.Status)); err != nil {
			return pkgError.ValidationError(err.Error())
		}
	}
	return nil
}

// ValidateListRequest parses the optional status filter from its query form.
func ValidateListRequest(status string, limit int) (*domainScheduler.PostStatus, error) {
	if limit < 0 {
		return nil, pkgError.ValidationError("limit cannot be negative")
	}
	if status == "" {
		return nil, nil
	}
	parsed, err := domainScheduler.ParsePostStatus(status)
	if err != nil {
		return nil, pkgError.ValidationError(err.Error())
	}
	return &parsed, nil
}
