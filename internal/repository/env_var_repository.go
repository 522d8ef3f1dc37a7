package repository

import (
	"context"

	"github.com/Vistiqx/shopify-automation/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnvVarRepository struct {
	db *gorm.DB
}

func NewEnvVarRepository(db *gorm.DB) *EnvVarRepository {
	return &EnvVarRepository{db: db}
}

func (r *EnvVarRepository) List(ctx context.Context) ([]models.EnvVar, error) {
	var vars []models.EnvVar
	err := r.db.WithContext(ctx).Order("key").Find(&vars).Error
	return vars, err
}

func (r *EnvVarRepository) Get(ctx context.Context, id uint) (*models.EnvVar, error) {
	var v models.EnvVar
	if err := r.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, notFound(err, ErrEnvVarNotFound)
	}
	return &v, nil
}

func (r *EnvVarRepository) ByKey(ctx context.Context, key string) (*models.EnvVar, error) {
	var v models.EnvVar
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&v).Error; err != nil {
		return nil, notFound(err, ErrEnvVarNotFound)
	}
	return &v, nil
}

// Create inserts v. An existing key yields ErrDuplicate.
func (r *EnvVarRepository) Create(ctx context.Context, v *models.EnvVar) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(v).Error
	})
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

// EnsureDefault inserts key with value unless the key already exists; an
// existing row keeps whatever the operator stored.
func (r *EnvVarRepository) EnsureDefault(ctx context.Context, key, value, description string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "key"}}, DoNothing: true}).
		Create(&models.EnvVar{Key: key, Value: value, Description: description}).Error
}

func (r *EnvVarRepository) Update(ctx context.Context, v *models.EnvVar) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(v).Error
	})
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *EnvVarRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.EnvVar{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrEnvVarNotFound
	}
	return nil
}

// Values returns every stored key and value.
func (r *EnvVarRepository) Values(ctx context.Context) (map[string]string, error) {
	vars, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		out[v.Key] = v.Value
	}
	return out, nil
}
