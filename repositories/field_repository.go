package repositories

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"formfield.app/configs/configslog"
	"formfield.app/models"
)

// IFieldRepository field database operations.
type IFieldRepository interface {
	Create(ctx context.Context, field *models.Field) error
	Update(ctx context.Context, field *models.Field) error
	DeleteByIDs(ctx context.Context, formID uint, ids []uint) error
}

// FieldRepository implements IFieldRepository.
type FieldRepository struct {
	db *gorm.DB
}

// NewFieldRepositoryTx returns a repository bound to tx.
func NewFieldRepositoryTx(tx *gorm.DB) IFieldRepository {
	return &FieldRepository{db: tx}
}

func (r *FieldRepository) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create inserts a field.
func (r *FieldRepository) Create(ctx context.Context, field *models.Field) error {
	if field == nil || field.FormID == 0 {
		return errors.New("field without a form cannot be created")
	}
	return r.getDB(ctx).Create(field).Error
}

// Update saves every column of a field.
func (r *FieldRepository) Update(ctx context.Context, field *models.Field) error {
	if field == nil || field.ID == 0 {
		return errors.New("field to update is not valid")
	}
	return r.getDB(ctx).Save(field).Error
}

// DeleteByIDs removes fields of formID together with their stored values.
// Ids that do not belong to the form are ignored.
func (r *FieldRepository) DeleteByIDs(ctx context.Context, formID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.getDB(ctx)
	owned := db.Model(&models.Field{}).Select("id").Where("form_id = ? AND id IN ?", formID, ids)
	if err := db.Where("field_id IN (?)", owned).Delete(&models.SubmissionValue{}).Error; err != nil {
		configslog.Log.Error("FieldRepository.DeleteByIDs: values", zap.Uint("formID", formID), zap.Uints("ids", ids), zap.Error(err))
		return err
	}
	if err := db.Where("form_id = ? AND id IN ?", formID, ids).Delete(&models.Field{}).Error; err != nil {
		configslog.Log.Error("FieldRepository.DeleteByIDs: fields", zap.Uint("formID", formID), zap.Uints("ids", ids), zap.Error(err))
		return err
	}
	return nil
}

var _ IFieldRepository = (*FieldRepository)(nil)
