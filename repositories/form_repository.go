package repositories

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"formfield.app/configs/configsdatabase"
	"formfield.app/configs/configslog"
	"formfield.app/models"
	"formfield.app/pkg/queryparams"
)

// IFormRepository form database operations.
type IFormRepository interface {
	Create(ctx context.Context, form *models.Form) error
	FindByID(ctx context.Context, id uint) (*models.Form, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Form, error)
	FindAllByUserIDPaginated(ctx context.Context, userID uint, params queryparams.ListParams) ([]models.Form, int64, error)
	Update(ctx context.Context, form *models.Form) error
	Delete(ctx context.Context, id uint) error
}

// FormRepository implements IFormRepository.
type FormRepository struct {
	db   *gorm.DB
	base IBaseRepository[models.Form]
}

// NewFormRepository returns a repository on the process-wide connection.
func NewFormRepository() IFormRepository {
	return NewFormRepositoryTx(configsdatabase.GetDB())
}

// NewFormRepositoryTx returns a repository bound to tx.
func NewFormRepositoryTx(tx *gorm.DB) IFormRepository {
	base := NewBaseRepository[models.Form](tx)
	base.SetAllowedSortColumns([]string{"id", "created_at", "updated_at", "name"})
	return &FormRepository{db: tx, base: base}
}

func (r *FormRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

func orderedFields(db *gorm.DB) *gorm.DB {
	return db.Order("fields.sort_order asc, fields.id asc")
}

// Create inserts a form together with its fields.
func (r *FormRepository) Create(ctx context.Context, form *models.Form) error {
	if form == nil || form.UserID == 0 {
		return errors.New("form without an owner cannot be created")
	}
	return r.getDB(ctx).Omit("Country", "Submissions").Create(form).Error
}

// FindByID loads a form with its country and its fields in display order.
func (r *FormRepository) FindByID(ctx context.Context, id uint) (*models.Form, error) {
	return r.find(r.getDB(ctx), id, "FindByID")
}

// FindByIDForUpdate is FindByID with the form row locked until the
// surrounding transaction ends.
func (r *FormRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Form, error) {
	return r.find(r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id, "FindByIDForUpdate")
}

func (r *FormRepository) find(db *gorm.DB, id uint, op string) (*models.Form, error) {
	if id == 0 {
		return nil, ErrNotFound
	}
	var form models.Form
	err := db.Preload("Country").Preload("Fields", orderedFields).First(&form, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		configslog.Log.Error("FormRepository."+op+": DB error", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return &form, nil
}

// FindAllByUserIDPaginated returns one page of the forms owned by userID.
// params.Name filters by a case-insensitive substring of the form name.
func (r *FormRepository) FindAllByUserIDPaginated(ctx context.Context, userID uint, params queryparams.ListParams) ([]models.Form, int64, error) {
	var forms []models.Form
	var totalCount int64

	query := r.getDB(ctx).Model(&models.Form{}).Where("forms.user_id = ?", userID)
	if params.Name != "" {
		query = query.Where("LOWER(forms.name) LIKE ?", "%"+strings.ToLower(params.Name)+"%")
	}

	if err := query.Count(&totalCount).Error; err != nil {
		configslog.Log.Error("FormRepository.Count (Paginated by User): DB error", zap.Uint("userID", userID), zap.Error(err))
		return nil, 0, err
	}
	if totalCount == 0 {
		return forms, 0, nil
	}

	err := query.Preload("Fields", orderedFields).
		Order(r.base.OrderClause(params, "forms")).
		Limit(params.PerPage).
		Offset(params.CalculateOffset()).
		Find(&forms).Error
	if err != nil {
		configslog.Log.Error("FormRepository.Find (Paginated by User): DB error", zap.Uint("userID", userID), zap.Error(err))
		return nil, totalCount, err
	}
	return forms, totalCount, nil
}

// Update saves the form's own columns. Fields are saved separately.
func (r *FormRepository) Update(ctx context.Context, form *models.Form) error {
	if form == nil || form.ID == 0 {
		return errors.New("form to update is not valid")
	}
	return r.getDB(ctx).Model(form).Updates(map[string]any{
		"name":         form.Name,
		"country_code": form.CountryCode,
	}).Error
}

// Delete removes a form with its fields, submissions and values. Run it in a
// transaction.
func (r *FormRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	submissionIDs := db.Model(&models.Submission{}).Select("id").Where("form_id = ?", id)
	if err := db.Where("submission_id IN (?)", submissionIDs).Delete(&models.SubmissionValue{}).Error; err != nil {
		configslog.Log.Error("FormRepository.Delete: values", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if err := db.Where("form_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
		configslog.Log.Error("FormRepository.Delete: submissions", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if err := db.Where("form_id = ?", id).Delete(&models.Field{}).Error; err != nil {
		configslog.Log.Error("FormRepository.Delete: fields", zap.Uint("id", id), zap.Error(err))
		return err
	}
	result := db.Delete(&models.Form{}, id)
	if result.Error != nil {
		configslog.Log.Error("FormRepository.Delete: form", zap.Uint("id", id), zap.Error(result.Error))
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ IFormRepository = (*FormRepository)(nil)
