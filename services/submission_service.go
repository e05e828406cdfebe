package services

import (
	"context"
	"encoding/json"
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

// SubmissionServiceError submission service errors.
type SubmissionServiceError string

func (e SubmissionServiceError) Error() string { return string(e) }

const (
	ErrSubmissionNotFound       SubmissionServiceError = "submission not found"
	ErrSubmissionForbidden      SubmissionServiceError = "you are not allowed to edit this submission"
	ErrSubmissionCreationFailed SubmissionServiceError = "submission could not be recorded"
	ErrSubmissionUpdateFailed   SubmissionServiceError = "submission could not be updated"
)

// SubmissionDetail is a submission read against its form's current fields.
// Values holds an entry for every field; fields the submission does not
// cover are null.
type SubmissionDetail struct {
	Submission *models.Submission
	Form       *models.Form
	Values     map[uint]formschema.Value
	Covered    map[uint]bool
}

// ISubmissionService submission operations.
type ISubmissionService interface {
	RecordSubmission(ctx context.Context, formID uint, submitterID *uint, raw map[string]json.RawMessage) (*SubmissionDetail, error)
	UpdateSubmission(ctx context.Context, id uint, actorID uint, raw map[string]json.RawMessage) (*SubmissionDetail, error)
	GetSubmission(ctx context.Context, id uint) (*SubmissionDetail, error)
	GetSubmissionsForUser(ctx context.Context, userID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error)
}

// SubmissionService implements ISubmissionService.
type SubmissionService struct {
	repo repositories.ISubmissionRepository
	db   *gorm.DB
}

// NewSubmissionService returns a SubmissionService on the process-wide
// connection.
func NewSubmissionService() ISubmissionService {
	return &SubmissionService{
		repo: repositories.NewSubmissionRepository(),
		db:   configsdatabase.GetDB(),
	}
}

// --- Helpers ---

func detailOf(submission *models.Submission, form *models.Form) (*SubmissionDetail, error) {
	d := &SubmissionDetail{
		Submission: submission,
		Form:       form,
		Values:     make(map[uint]formschema.Value, len(form.Fields)),
		Covered:    make(map[uint]bool, len(submission.Values)),
	}
	for _, f := range form.Fields {
		d.Values[f.ID] = formschema.Empty()
	}
	for _, row := range submission.Values {
		v, err := row.Decode()
		if err != nil {
			return nil, fmt.Errorf("%w: submission %d field %d", ErrStoredValueCorrupt, row.SubmissionID, row.FieldID)
		}
		d.Values[row.FieldID] = v
		d.Covered[row.FieldID] = true
	}
	return d, nil
}

// normalize coerces each answer toward its field's type, in place. It runs
// before validation so the checks see what will be stored.
func normalize(fields []models.Field, values map[string]formschema.Value) {
	for _, f := range fields {
		key := formschema.ValueKey(f.ID)
		if v, ok := values[key]; ok {
			values[key] = formschema.Normalize(v, formschema.FieldType(f.Type))
		}
	}
}

// byField keys the answers of fields by field id.
func byField(fields []models.Field, values map[string]formschema.Value) map[uint]formschema.Value {
	out := make(map[uint]formschema.Value, len(values))
	for _, f := range fields {
		if v, ok := values[formschema.ValueKey(f.ID)]; ok {
			out[f.ID] = v
		}
	}
	return out
}

func loadForm(ctx context.Context, forms repositories.IFormRepository, id uint, lock bool) (*models.Form, error) {
	var (
		form *models.Form
		err  error
	)
	if lock {
		form, err = forms.FindByIDForUpdate(ctx, id)
	} else {
		form, err = forms.FindByID(ctx, id)
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrFormNotFound
	}
	return form, err
}

// --- Service methods ---

// RecordSubmission validates and stores a new submission of a form. Every
// field of the form must be answered; validation failures are returned as
// *validation.Errors.
func (s *SubmissionService) RecordSubmission(ctx context.Context, formID uint, submitterID *uint, raw map[string]json.RawMessage) (*SubmissionDetail, error) {
	var detail *SubmissionDetail
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissionRepoTx := repositories.NewSubmissionRepositoryTx(tx)

		// Locked so a concurrent schema change cannot interleave.
		form, err := loadForm(ctx, repositories.NewFormRepositoryTx(tx), formID, true)
		if err != nil {
			return err
		}

		errs := validation.New()
		values := formschema.DecodeValues(raw, errs)
		normalize(form.Fields, values)
		formschema.ValidateSubmission(models.FieldSpecs(form.Fields), values, errs)
		if !errs.Empty() {
			return errs
		}

		submission := models.Submission{FormID: form.ID, UserID: submitterID}
		if err := submissionRepoTx.Create(ctx, &submission); err != nil {
			configslog.Log.Error("SubmissionService.RecordSubmission: create failed", zap.Uint("formID", formID), zap.Error(err))
			return ErrSubmissionCreationFailed
		}

		rows := make([]models.SubmissionValue, 0, len(form.Fields))
		for fieldID, v := range byField(form.Fields, values) {
			row := models.SubmissionValue{SubmissionID: submission.ID, FieldID: fieldID}
			if err := row.Encode(v); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		if err := submissionRepoTx.CreateValues(ctx, rows); err != nil {
			configslog.Log.Error("SubmissionService.RecordSubmission: values failed", zap.Uint("formID", formID), zap.Error(err))
			return ErrSubmissionCreationFailed
		}

		stored, err := submissionRepoTx.FindByID(ctx, submission.ID)
		if err != nil {
			return err
		}
		detail, err = detailOf(stored, form)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Submission recorded: ID %d for form %d", detail.Submission.ID, formID)
	return detail, nil
}

// UpdateSubmission edits some answers of a submission. Only its submitter
// may do so, and only fields the submission already covers can be changed.
func (s *SubmissionService) UpdateSubmission(ctx context.Context, id uint, actorID uint, raw map[string]json.RawMessage) (*SubmissionDetail, error) {
	var detail *SubmissionDetail
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissionRepoTx := repositories.NewSubmissionRepositoryTx(tx)

		// Form row first, then the submission row, as every writer does.
		formID, err := submissionRepoTx.FindFormID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}
		form, err := loadForm(ctx, repositories.NewFormRepositoryTx(tx), formID, true)
		if err != nil {
			if errors.Is(err, ErrFormNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}

		submission, err := submissionRepoTx.FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}
		if submission.UserID == nil || actorID == 0 || *submission.UserID != actorID {
			return ErrSubmissionForbidden
		}
		current, err := detailOf(submission, form)
		if err != nil {
			return err
		}

		errs := validation.New()
		values := formschema.DecodeValues(raw, errs)
		normalize(form.Fields, values)
		formschema.ValidateSubmissionUpdate(models.FieldSpecs(form.Fields), current.Covered, values, errs)
		if !errs.Empty() {
			return errs
		}

		for fieldID, v := range byField(form.Fields, values) {
			row := models.SubmissionValue{SubmissionID: submission.ID, FieldID: fieldID}
			if err := row.Encode(v); err != nil {
				return err
			}
			if err := submissionRepoTx.UpdateValue(ctx, &row); err != nil {
				configslog.Log.Error("SubmissionService.UpdateSubmission: value failed",
					zap.Uint("id", id), zap.Uint("fieldID", fieldID), zap.Error(err))
				return ErrSubmissionUpdateFailed
			}
		}

		stored, err := submissionRepoTx.FindByID(ctx, submission.ID)
		if err != nil {
			return err
		}
		detail, err = detailOf(stored, form)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	configslog.SLog.Infof("Submission updated: ID %d (by %d)", id, actorID)
	return detail, nil
}

// GetSubmission loads a submission against its form's current fields.
func (s *SubmissionService) GetSubmission(ctx context.Context, id uint) (*SubmissionDetail, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	form, err := loadForm(ctx, repositories.NewFormRepositoryTx(s.db), submission.FormID, false)
	if err != nil {
		return nil, err
	}
	return detailOf(submission, form)
}

// GetSubmissionsForUser returns one page of userID's submissions.
func (s *SubmissionService) GetSubmissionsForUser(ctx context.Context, userID uint, params queryparams.ListParams) (*queryparams.PaginatedResult, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: missing user", ErrFormInvalidInput)
	}
	params.Validate()

	submissions, totalCount, err := s.repo.FindAllByUserIDPaginated(ctx, userID, params)
	if err != nil {
		return nil, err
	}
	return queryparams.NewPaginatedResult(submissions, totalCount, params), nil
}

var _ ISubmissionService = (*SubmissionService)(nil)
