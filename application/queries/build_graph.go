package queries

import (
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/utils"
)

// BuildGraphQuery builds the navigation graph around an already selected record
type BuildGraphQuery struct {
	Record        *entities.ClickstreamRecord `json:"record" validate:"required"`
	CenterIsBlank bool                        `json:"centerIsBlank"`
	CenterIsBlue  bool                        `json:"centerIsBlue"`
}

// Validate validates the query
func (q BuildGraphQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}
