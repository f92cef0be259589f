package repositories

import (
	"errors"

	"fiber-wes/models"
	"fiber-wes/werrors"

	"gorm.io/gorm"
)

type ParameterRepository struct {
	db *gorm.DB
}

func NewParameterRepository(db *gorm.DB) *ParameterRepository {
	return &ParameterRepository{db: db}
}

// GetActive returns the single active policy row for a module. A missing row
// is not an error: it reads as a Parameter with every flag false.
func (r *ParameterRepository) GetActive(moduleCode string) (models.Parameter, error) {
	var param models.Parameter
	err := r.db.Where("module_code = ? AND is_active = ?", moduleCode, true).
		Order("id ASC").First(&param).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Parameter{ModuleCode: moduleCode}, nil
		}
		return param, werrors.Wrap(err, werrors.KeyInternalError)
	}
	return param, nil
}
