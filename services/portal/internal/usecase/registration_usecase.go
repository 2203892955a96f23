package usecase

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"premier-open-group/pkg/logger"
	"premier-open-group/services/portal/internal/content"
	"premier-open-group/services/portal/internal/entity"
	"premier-open-group/services/portal/internal/repo/persistent"

	"github.com/go-playground/validator/v10"
)

type RegistrationUseCase interface {
	Submit(ctx context.Context, registration *entity.Registration) error
	List(ctx context.Context) ([]*entity.Registration, error)
	Delete(ctx context.Context, id string) error

	SubmitInquiry(ctx context.Context, inquiry *entity.ContactInquiry) error
	ListInquiries(ctx context.Context) ([]*entity.ContactInquiry, error)
	DeleteInquiry(ctx context.Context, id string) error
}

type registrationUseCase struct {
	repo     persistent.RegistrationRepository
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRegistrationUseCase(repo persistent.RegistrationRepository, log *logger.Logger) RegistrationUseCase {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &registrationUseCase{repo: repo, validate: v, logger: log}
}

func (uc *registrationUseCase) Submit(ctx context.Context, registration *entity.Registration) error {
	trimRegistration(registration)
	registration.Email = strings.ToLower(registration.Email)
	if err := uc.check(registration); err != nil {
		return err
	}

	if err := uc.repo.CreateRegistration(ctx, registration); err != nil {
		return fmt.Errorf("save registration: %w", err)
	}
	uc.logger.Info("Received registration %s for section %s", registration.ID, registration.Section)
	return nil
}

func (uc *registrationUseCase) List(ctx context.Context) ([]*entity.Registration, error) {
	return uc.repo.ListRegistrations(ctx)
}

func (uc *registrationUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.DeleteRegistration(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return nil
}

func (uc *registrationUseCase) SubmitInquiry(ctx context.Context, inquiry *entity.ContactInquiry) error {
	inquiry.Name = strings.TrimSpace(inquiry.Name)
	inquiry.Email = strings.ToLower(strings.TrimSpace(inquiry.Email))
	inquiry.Phone = strings.TrimSpace(inquiry.Phone)
	inquiry.Message = strings.TrimSpace(inquiry.Message)
	if err := uc.check(inquiry); err != nil {
		return err
	}

	if err := uc.repo.CreateInquiry(ctx, inquiry); err != nil {
		return fmt.Errorf("save inquiry: %w", err)
	}
	uc.logger.Info("Received contact inquiry %s", inquiry.ID)
	return nil
}

func (uc *registrationUseCase) ListInquiries(ctx context.Context) ([]*entity.ContactInquiry, error) {
	return uc.repo.ListInquiries(ctx)
}

func (uc *registrationUseCase) DeleteInquiry(ctx context.Context, id string) error {
	if err := uc.repo.DeleteInquiry(ctx, id); err != nil {
		return translateRepoError(err)
	}
	return nil
}

func (uc *registrationUseCase) check(v interface{}) error {
	err := uc.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = content.DescribeField(fe)
	}
	return &ValidationError{Fields: fields}
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return f.Name
	}
	return name
}

func trimRegistration(r *entity.Registration) {
	for _, s := range []*string{
		&r.RegistrationNumber, &r.Section, &r.Name, &r.FatherName, &r.MotherName,
		&r.DateOfBirth, &r.BloodGroup, &r.MobileNo, &r.Email,
		&r.CommunicationAddress, &r.PermanentAddress, &r.AlternateContact, &r.SchoolCollege,
	} {
		*s = strings.TrimSpace(*s)
	}
}
