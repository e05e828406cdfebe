package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"formfield.app/configs/configsdatabase"
	"formfield.app/configs/configslog"
	"formfield.app/models"
	"formfield.app/pkg/queryparams"
)

// ISubmissionRepository submission and stored value database operations.
type ISubmissionRepository interface {
	Create(ctx context.Context, submission *models.Submission) error
	FindByID(ctx context.Context, id uint) (*models.Submission, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Submission, error)
	FindFormID(ctx context.Context, id uint) (uint, error)
	FindAllByUserIDPaginated(ctx context.Context, userID uint, params queryparams.ListParams) ([]models.Submission, int64, error)
	CountByFormID(ctx context.Context, formID uint) (int64, error)
	FindValuesByFieldIDs(ctx context.Context, fieldIDs []uint) ([]models.SubmissionValue, error)
	CreateValues(ctx context.Context, values []models.SubmissionValue) error
	UpdateValue(ctx context.Context, value *models.SubmissionValue) error
}

// SubmissionRepository implements ISubmissionRepository.
type SubmissionRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Submission]
}

// NewSubmissionRepository returns a repository on the process-wide
// connection.
func NewSubmissionRepository() ISubmissionRepository {
	return NewSubmissionRepositoryTx(configsdatabase.GetDB())
}

// NewSubmissionRepositoryTx returns a repository bound to tx.
func NewSubmissionRepositoryTx(tx *gorm.DB) ISubmissionRepository {
	base := NewBaseRepository[models.Submission](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "updated_at"})
	return &SubmissionRepository{db: tx, base: base}
}

func (r *SubmissionRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create inserts the submission row only. Values are stored with
// CreateValues once the id is known.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission == nil || submission.FormID == 0 {
		return errors.New("submission without a form cannot be created")
	}
	return r.base.Create(ctx, submission)
}

// FindByID loads a submission with its stored values.
func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (*models.Submission, error) {
	return r.find(r.getDB(ctx), id, "FindByID")
}

// FindByIDForUpdate is FindByID with the submission row locked until the
// surrounding transaction ends.
func (r *SubmissionRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Submission, error) {
	return r.find(r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id, "FindByIDForUpdate")
}

// FindFormID returns the form a submission belongs to without locking the
// submission.
func (r *SubmissionRepository) FindFormID(ctx context.Context, id uint) (uint, error) {
	var formIDs []uint
	err := r.getDB(ctx).Model(&models.Submission{}).Where("id = ?", id).Limit(1).Pluck("form_id", &formIDs).Error
	if err != nil {
		configslog.Log.Error("SubmissionRepository.FindFormID: DB error", zap.Uint("id", id), zap.Error(err))
		return 0, err
	}
	if len(formIDs) == 0 {
		return 0, ErrNotFound
	}
	return formIDs[0], nil
}

func (r *SubmissionRepository) find(db *gorm.DB, id uint, op string) (*models.Submission, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var submission models.Submission
	err := db.Preload("Values").First(&submission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("SubmissionRepository."+op+": DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &submission, nil
}

// FindAllByUserIDPaginated returns one page of userID's submissions with
// their forms.
func (r *SubmissionRepository) FindAllByUserIDPaginated(ctx context.Context, userID uint, params queryparams.ListParams) ([]models.Submission, int64, error) {
	var submissions []models.Submission
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Submission{}).Where("submissions.user_id = ?", userID)
	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("SubmissionRepository.Count (Paginated by User): DB error", zap.Uint("userID", userID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return submissions, 0, nil
	}

	err := query.Preload("Form").
		Order(r.base.OrderClause(params, "submissions")).
		Limit(params.PerPage).
		Offset(params.CalculateOffset()).
		Find(&submissions).Error
	if err != nil {
		configslog.Log.Error("SubmissionRepository.Find (Paginated by User): DB error", zap.Uint("userID", userID), zap.Error(err))
		return nil, totalCount, err
	}
	return submissions, totalCount, nil
}

// CountByFormID returns how many submissions a form has.
func (r *SubmissionRepository) CountByFormID(ctx context.Context, formID uint) (int64, error) {
	var count int64
	err := r.getDB(ctx).Model(&models.Submission{}).Where("form_id = ?", formID).Count(&count).Error
	return count, err
}

// FindValuesByFieldIDs returns every stored value of the given fields.
func (r *SubmissionRepository) FindValuesByFieldIDs(ctx context.Context, fieldIDs []uint) ([]models.SubmissionValue, error) {
	var values []models.SubmissionValue
	if len(fieldIDs) == 0 {
		return values, nil
	}
	err := r.getDB(ctx).Where("field_id IN ?", fieldIDs).Order("field_id, submission_id").Find(&values).Error
	if err != nil {
		configslog.Log.Error("SubmissionRepository.FindValuesByFieldIDs: DB error", zap.Uints("fieldIDs", fieldIDs), zap.Error(err))
		return nil, err
	}
	return values, nil
}

// CreateValues inserts stored values.
func (r *SubmissionRepository) CreateValues(ctx context.Context, values []models.SubmissionValue) error {
	if len(values) == 0 {
		return nil
	}
	return r.getDB(ctx).Omit(clause.Associations).Create(&values).Error
}

// UpdateValue rewrites one stored value.
func (r *SubmissionRepository) UpdateValue(ctx context.Context, value *models.SubmissionValue) error {
	result := r.getDB(ctx).Model(&models.SubmissionValue{}).
		Where("submission_id = ? AND field_id = ?", value.SubmissionID, value.FieldID).
		Update("value", value.Value)
	if result.Error != nil {
		configslog.Log.Error("SubmissionRepository.UpdateValue: DB error",
			zap.Uint("submissionID", value.SubmissionID),
			zap.Uint("fieldID", value.FieldID),
			zap.Error(result.Error),
		)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ISubmissionRepository = (*SubmissionRepository)(nil)
