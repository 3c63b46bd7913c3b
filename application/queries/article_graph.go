package queries

import (
	"namethatpage-backend/domain/core/aggregates"
	"namethatpage-backend/domain/core/entities"
)

// ArticleGraphQuery selects an article and builds its graph in one step,
// which is what a client does on every navigation.
type ArticleGraphQuery struct {
	Title         string `json:"title,omitempty" validate:"omitempty,max=255"`
	CenterIsBlank bool   `json:"centerIsBlank"`
	CenterIsBlue  bool   `json:"centerIsBlue"`
}

// Validate validates the query
func (q ArticleGraphQuery) Validate() error {
	return q.Selection().Validate()
}

// Selection returns the article selection part of the query
func (q ArticleGraphQuery) Selection() SelectArticleQuery {
	return SelectArticleQuery{Title: q.Title}
}

// ArticleGraphResult pairs the selected record with its graph
type ArticleGraphResult struct {
	Record *entities.ClickstreamRecord `json:"record"`
	Graph  *aggregates.Graph           `json:"graph"`
}
