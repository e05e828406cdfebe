package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"formfield.app/configs/configslog"
	"formfield.app/pkg/queryparams"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// IBaseRepository is the generic part of every repository.
type IBaseRepository[T any] interface {
	SetAllowedSortColumns(columns []string)
	OrderClause(params queryparams.ListParams, table string) string
	Create(ctx context.Context, entity *T) error
}

// BaseRepository implements IBaseRepository for model T.
type BaseRepository[T any] struct {
	db                 *gorm.DB
	allowedSortColumns map[string]bool
}

// NewBaseRepository returns a base repository on db.
func NewBaseRepository[T any](db *gorm.DB) *BaseRepository[T] {
	return &BaseRepository[T]{db: db, allowedSortColumns: map[string]bool{"id": true, "created_at": true}}
}

// SetAllowedSortColumns replaces the columns listings may sort by.
func (r *BaseRepository[T]) SetAllowedSortColumns(columns []string) {
	r.allowedSortColumns = make(map[string]bool, len(columns))
	for _, c := range columns {
		r.allowedSortColumns[c] = true
	}
}

// OrderClause returns the ORDER BY expression for params. Unknown columns
// fall back to the default sort column.
func (r *BaseRepository[T]) OrderClause(params queryparams.ListParams, table string) string {
	column := params.SortBy
	if !r.allowedSortColumns[column] {
		if column != "" {
			configslog.SLog.Warnf("Invalid sort column %q requested, using %s", column, queryparams.DefaultSortBy)
		}
		column = queryparams.DefaultSortBy
	}
	order := params.OrderBy
	if order != "asc" && order != "desc" {
		order = queryparams.DefaultOrderBy
	}
	if table != "" {
		column = table + "." + column
	}
	return column + " " + order
}

func (r *BaseRepository[T]) getDB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// Create inserts entity without touching its associations.
func (r *BaseRepository[T]) Create(ctx context.Context, entity *T) error {
	return r.getDB(ctx).Omit(clause.Associations).Create(entity).Error
}

var _ IBaseRepository[struct{}] = (*BaseRepository[struct{}])(nil)
