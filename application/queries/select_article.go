package queries

import (
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/domain/core/valueobjects"
	"namethatpage-backend/pkg/errors"
	"namethatpage-backend/pkg/utils"
)

// SelectArticleQuery selects the center article of a round. An empty
// Title asks for a random article.
type SelectArticleQuery struct {
	Title string `json:"title,omitempty" validate:"omitempty,max=255"`
}

// Validate validates the query
func (q SelectArticleQuery) Validate() error {
	if err := utils.ValidateStruct(q); err != nil {
		return errors.NewValidationError(err.Error())
	}
	if q.Title == "" {
		return nil
	}
	if _, err := valueobjects.NewArticleTitle(q.Title); err != nil {
		return errors.NewValidationError(err.Error())
	}
	return nil
}

// IsRandom reports whether the query asks for a random article
func (q SelectArticleQuery) IsRandom() bool {
	return q.Title == ""
}

// ArticleTitle returns the normalized title; call only after Validate
func (q SelectArticleQuery) ArticleTitle() valueobjects.ArticleTitle {
	title, _ := valueobjects.NewArticleTitle(q.Title)
	return title
}

// SelectArticleResult is the selected article's clickstream record
type SelectArticleResult = entities.ClickstreamRecord
