package handlers

import (
	"net/http"
	"net/url"

	"namethatpage-backend/application/queries"
	querybus "namethatpage-backend/application/queries/bus"
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ArticleHandler serves article selection
type ArticleHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *errors.ErrorHandler
	logger       *zap.Logger
}

// NewArticleHandler creates a new article handler
func NewArticleHandler(queryBus *querybus.QueryBus, errorHandler *errors.ErrorHandler, logger *zap.Logger) *ArticleHandler {
	return &ArticleHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GetRandomArticle handles GET /articles/random
func (h *ArticleHandler) GetRandomArticle(w http.ResponseWriter, r *http.Request) {
	h.selectArticle(w, r, queries.SelectArticleQuery{})
}

// GetArticle handles GET /articles/{title}
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil || title == "" {
		h.errorHandler.Handle(w, r, errors.NewValidationError("a valid article title is required"))
		return
	}
	h.selectArticle(w, r, queries.SelectArticleQuery{Title: title})
}

func (h *ArticleHandler) selectArticle(w http.ResponseWriter, r *http.Request, query queries.SelectArticleQuery) {
	record, err := querybus.Ask[*entities.ClickstreamRecord](r.Context(), h.queryBus, query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, record)
}
