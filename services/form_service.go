package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configsdatabase"
	"formfield.app/configs/configslog"
	"formfield.app/models"
	"formfield.app/pkg/formschema"
	"formfield.app/pkg/queryparams"
	"formfield.app/pkg/validation"
	"formfield.app/repositories"
)

// FormServiceError form service errors.
type FormServiceError string

func (e FormServiceError) Error() string { return string(e) }

const (
	ErrFormNotFound       FormServiceError = "form not found"
	ErrFormForbidden      FormServiceError = "you are not allowed to perform this action"
	ErrFormInvalidInput   FormServiceError = "invalid input"
	ErrFormCreationFailed FormServiceError = "form could not be created"
	ErrFormUpdateFailed   FormServiceError = "form could not be updated"
	ErrFormDeletionFailed FormServiceError = "form could not be deleted"
	ErrStoredValueCorrupt FormServiceError = "stored value could not be decoded"
)

// MigrationResult is the outcome of an accepted schema change.
type MigrationResult struct {
	Form      *models.Form
	Removed   int
	Updated   int
	Created   int
	Converted int
	Skipped   []formschema.SkippedConversion
}

// IFormService form schema operations.
type IFormService interface {
	CreateForm(ctx context.Context, ownerID uint, in formschema.FormInput) (*models.Form, error)
	GetFormByID(ctx context.Context, id uint) (*models.Form, error)
	IsOwner(ctx context.Context, id uint, userID uint) (bool, error)
	GetFormsForUser(ctx context.Context, userID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
	MigrateForm(ctx context.Context, id uint, actorIsOwner bool, in formschema.FormInput) (*MigrationResult, error)
	DeleteForm(ctx context.Context, id uint, actorIsOwner bool) error
}

// FormService implements IFormService.
type FormService struct {
	repo        repositories.IFormRepository
	countryRepo repositories.ICountryRepository
	db          *gorm.DB
}

// NewFormService returns a FormService on the process-wide connection.
func NewFormService() IFormService {
	return &FormService{
		repo:        repositories.NewFormRepository(),
		countryRepo: repositories.NewCountryRepository(),
		db:          configsdatabase.GetDB(),
	}
}

// --- Helpers ---

// validateFormAttributes checks name and country, including that the country
// exists.
func validateFormAttributes(ctx context.Context, countries repositories.ICountryRepository, in formschema.FormInput, errs *validation.Errors) error {
	formschema.ValidateForm(in, errs)
	if errs.Has("country_code") {
		return nil
	}
	ok, err := countries.ExistsByCode(ctx, in.Country())
	if err != nil {
		return err
	}
	if !ok {
		errs.Add("country_code", formschema.MsgCountryInvalid)
	}
	return nil
}

// loadState gathers a form's fields and every stored answer for them.
func loadState(ctx context.Context, submissions repositories.ISubmissionRepository, form *models.Form) (formschema.State, error) {
	state := formschema.State{
		Fields: models.FieldSpecs(form.Fields),
		Values: make(map[uint][]formschema.StoredValue, len(form.Fields)),
	}
	ids := make([]uint, len(form.Fields))
	for i, f := range form.Fields {
		ids[i] = f.ID
	}
	rows, err := submissions.FindValuesByFieldIDs(ctx, ids)
	if err != nil {
		return state, err
	}
	for _, row := range rows {
		v, err := row.Decode()
		if err != nil {
			configslog.Log.Error("Stored value could not be decoded",
				zap.Uint("submissionID", row.SubmissionID),
				zap.Uint("fieldID", row.FieldID),
				zap.Error(err),
			)
			return state, fmt.Errorf("%w: submission %d field %d", ErrStoredValueCorrupt, row.SubmissionID, row.FieldID)
		}
		state.Values[row.FieldID] = append(state.Values[row.FieldID], formschema.StoredValue{SubmissionID: row.SubmissionID, Value: v})
	}
	return state, nil
}

// --- Service methods ---

// CreateForm validates a new schema and stores it for ownerID. Validation
// failures are returned as *validation.Errors.
func (s *FormService) CreateForm(ctx context.Context, ownerID uint, in formschema.FormInput) (*models.Form, error) {
	if ownerID == 0 {
		return nil, fmt.Errorf("%w: missing owner", ErrFormInvalidInput)
	}

	errs := validation.New()
	if err := validateFormAttributes(ctx, s.countryRepo, in, errs); err != nil {
		return nil, err
	}
	specs := formschema.ValidateFields(in.Fields, errs)
	if !errs.Empty() {
		return nil, errs
	}

	form := models.Form{
		Name:        in.FormName(),
		CountryCode: in.Country(),
		UserID:      ownerID,
		Fields:      make([]models.Field, len(specs)),
	}
	for i, spec := range specs {
		if err := form.Fields[i].Apply(spec); err != nil {
			return nil, err
		}
	}

	var created *models.Form
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		if err := formRepoTx.Create(ctx, &form); err != nil {
			configslog.Log.Error("FormService.CreateForm: create failed", zap.Uint("ownerID", ownerID), zap.Error(err))
			return ErrFormCreationFailed
		}
		loaded, err := formRepoTx.FindByID(ctx, form.ID)
		if err != nil {
			return err
		}
		created = loaded
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Form created: ID %d, name %q, %d fields (owner %d)", created.ID, created.Name, len(created.Fields), ownerID)
	return created, nil
}

// GetFormByID loads a form with its fields in display order.
func (s *FormService) GetFormByID(ctx context.Context, id uint) (*models.Form, error) {
	form, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrFormNotFound
		}
		return nil, err
	}
	return form, nil
}

// IsOwner reports whether userID owns the form.
func (s *FormService) IsOwner(ctx context.Context, id uint, userID uint) (bool, error) {
	form, err := s.GetFormByID(ctx, id)
	if err != nil {
		return false, err
	}
	return userID != 0 && form.UserID == userID, nil
}

// GetFormsForUser returns one page of userID's forms.
func (s *FormService) GetFormsForUser(ctx context.Context, userID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrFormInvalidInput)
	}
	params.Validate()

	forms, totalCount, err := s.repo.FindAllByUserIDPaginated(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(forms, totalCount, params), nil
}

// MigrateForm applies a schema change to an existing form. The form row stays
// locked from validation until commit, so the change is checked against the
// values it will convert. Nothing is written unless every check passes;
// validation failures are returned as *validation.Errors.
func (s *FormService) MigrateForm(ctx context.Context, id uint, actorIsOwner bool, in formschema.FormInput) (*MigrationResult, error) {
	if !actorIsOwner {
		return nil, ErrFormForbidden
	}

	var result *MigrationResult
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		fieldRepoTx := repositories.NewFieldRepositoryTx(tx)
		submissionRepoTx := repositories.NewSubmissionRepositoryTx(tx)

		// a. Lock the form
		form, err := formRepoTx.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrFormNotFound
			}
			return err
		}

		// b. Validate and plan
		errs := validation.New()
		if err := validateFormAttributes(ctx, repositories.NewCountryRepositoryTx(tx), in, errs); err != nil {
			return err
		}
		state, err := loadState(ctx, submissionRepoTx, form)
		if err != nil {
			return err
		}
		plan := formschema.PlanMigration(state, formschema.Proposal{Fields: in.Fields, Removed: in.RemovedFields}, errs)
		if !errs.Empty() {
			return errs
		}

		// c. Form attributes
		form.Name = in.FormName()
		form.CountryCode = in.Country()
		if err := formRepoTx.Update(ctx, form); err != nil {
			configslog.Log.Error("FormService.MigrateForm: form update failed", zap.Uint("id", id), zap.Error(err))
			return ErrFormUpdateFailed
		}

		// d. Removals, then updates, conversions and creations
		if err := fieldRepoTx.DeleteByIDs(ctx, form.ID, plan.Removed); err != nil {
			return ErrFormUpdateFailed
		}

		rows := make(map[uint]*models.Field, len(form.Fields))
		for i := range form.Fields {
			rows[form.Fields[i].ID] = &form.Fields[i]
		}
		for _, change := range plan.Updated {
			row := rows[change.Before.ID]
			if err := row.Apply(change.After); err != nil {
				return err
			}
			if err := fieldRepoTx.Update(ctx, row); err != nil {
				configslog.Log.Error("FormService.MigrateForm: field update failed", zap.Uint("fieldID", row.ID), zap.Error(err))
				return ErrFormUpdateFailed
			}
		}

		for _, vc := range plan.Converted {
			stored := models.SubmissionValue{SubmissionID: vc.SubmissionID, FieldID: vc.FieldID}
			if err := stored.Encode(vc.After); err != nil {
				return err
			}
			if err := submissionRepoTx.UpdateValue(ctx, &stored); err != nil {
				return ErrFormUpdateFailed
			}
		}

		for _, spec := range plan.Created {
			field := models.Field{FormID: form.ID}
			if err := field.Apply(spec); err != nil {
				return err
			}
			if err := fieldRepoTx.Create(ctx, &field); err != nil {
				configslog.Log.Error("FormService.MigrateForm: field create failed", zap.Uint("id", id), zap.Error(err))
				return ErrFormUpdateFailed
			}
		}

		updated, err := formRepoTx.FindByID(ctx, form.ID)
		if err != nil {
			return err
		}
		result = &MigrationResult{
			Form:      updated,
			Removed:   len(plan.Removed),
			Updated:   len(plan.Updated),
			Created:   len(plan.Created),
			Converted: len(plan.Converted),
			Skipped:   plan.Skipped,
		}
		return nil
	})
	if txErr != nil {
		var verrs *validation.Errors
		if !errors.As(txErr, &verrs) && !errors.Is(txErr, ErrFormNotFound) {
			configslog.Log.Error("MigrateForm transaction failed", zap.Uint("id", id), zap.Error(txErr))
		}
		return nil, txErr
	}

	for _, sk := range result.Skipped {
		configslog.Log.Warn("Stored value left unconverted",
			zap.Uint("formID", id),
			zap.Uint("submissionID", sk.SubmissionID),
			zap.Uint("fieldID", sk.FieldID),
			zap.String("from", string(sk.From)),
			zap.String("to", string(sk.To)),
			zap.Stringer("value", sk.Value),
		)
	}
	configslog.SLog.Infof("Form migrated: ID %d (removed %d, updated %d, created %d, converted %d, skipped %d)",
		id, result.Removed, result.Updated, result.Created, result.Converted, len(result.Skipped))
	return result, nil
}

// DeleteForm removes a form with its fields, submissions and values.
func (s *FormService) DeleteForm(ctx context.Context, id uint, actorIsOwner bool) error {
	if !actorIsOwner {
		return ErrFormForbidden
	}

	var submissions int64
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		formRepoTx := repositories.NewFormRepositoryTx(tx)
		if _, err := formRepoTx.FindByIDForUpdate(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrFormNotFound
			}
			return err
		}
		count, err := repositories.NewSubmissionRepositoryTx(tx).CountByFormID(ctx, id)
		if err != nil {
			return err
		}
		submissions = count
		if err := formRepoTx.Delete(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrFormNotFound
			}
			return ErrFormDeletionFailed
		}
		return nil
	})
	if txErr != nil {
		configslog.Log.Error("DeleteForm transaction failed", zap.Uint("id", id), zap.Error(txErr))
		return txErr
	}
	configslog.SLog.Infof("Form deleted: ID %d with %d submissions", id, submissions)
	return nil
}

var _ IFormService = (*FormService)(nil)
