package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"namethatpage-backend/application/queries"
	querybus "namethatpage-backend/application/queries/bus"
	"namethatpage-backend/domain/core/aggregates"
	"namethatpage-backend/domain/core/entities"
	"namethatpage-backend/pkg/errors"

	"go.uber.org/zap"
)

const maxRequestBody = 64 << 10

// BuildGraphRequest is the body of POST /graphs
type BuildGraphRequest struct {
	Record        *entities.ClickstreamRecord `json:"record"`
	CenterIsBlank bool                        `json:"centerIsBlank"`
	CenterIsBlue  bool                        `json:"centerIsBlue"`
}

// GraphHandler serves graph building
type GraphHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *errors.ErrorHandler
	logger       *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(queryBus *querybus.QueryBus, errorHandler *errors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// BuildGraph handles POST /graphs
func (h *GraphHandler) BuildGraph(w http.ResponseWriter, r *http.Request) {
	var req BuildGraphRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	graph, err := querybus.Ask[*aggregates.Graph](r.Context(), h.queryBus, queries.BuildGraphQuery{
		Record:        req.Record,
		CenterIsBlank: req.CenterIsBlank,
		CenterIsBlue:  req.CenterIsBlue,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, graph)
}

// GetArticleGraph handles GET /graph?title=&blank=&blue=, selecting the
// article (random when title is empty) and building its graph.
func (h *GraphHandler) GetArticleGraph(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	blank, err := parseFlag(params.Get("blank"))
	if err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("blank must be a boolean"))
		return
	}
	blue, err := parseFlag(params.Get("blue"))
	if err != nil {
		h.errorHandler.Handle(w, r, errors.NewValidationError("blue must be a boolean"))
		return
	}

	result, err := querybus.Ask[*queries.ArticleGraphResult](r.Context(), h.queryBus, queries.ArticleGraphQuery{
		Title:         params.Get("title"),
		CenterIsBlank: blank,
		CenterIsBlue:  blue,
	})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, result)
}

func parseFlag(value string) (bool, error) {
	if value == "" {
		return false, nil
	}
	return strconv.ParseBool(value)
}
