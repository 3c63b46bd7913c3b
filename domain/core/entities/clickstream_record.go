package entities

import (
	"strings"

	"namethatpage-backend/domain/core/valueobjects"
)

const (
	// RawResultLimit is how many ranked results are requested per direction.
	RawResultLimit = 12
	// MaxCluesPerDirection is how many clues survive filtering per direction.
	MaxCluesPerDirection = 5
	// AggregateBucketPrefix marks the clickstream "long tail" buckets
	// (other-search, other-external, ...) which are not articles.
	AggregateBucketPrefix = "other-"
	// DefaultMainPage is the wiki's landing page.
	DefaultMainPage valueobjects.ArticleTitle = "Main_Page"
)

// LinkClue is one neighbor surfaced by the clickstream source
type LinkClue struct {
	Title valueobjects.ArticleTitle `json:"title"`
}

// ClickstreamRecord holds the ranked inbound and outbound clues of an article
type ClickstreamRecord struct {
	Center   valueobjects.ArticleTitle `json:"center,omitempty" validate:"required"`
	Inbound  []LinkClue                `json:"inbound" validate:"max=5"`
	Outbound []LinkClue                `json:"outbound" validate:"max=5"`
}

// WithoutCenter returns a copy of the record with the center title removed,
// for responses that must not reveal the answer
func (r *ClickstreamRecord) WithoutCenter() *ClickstreamRecord {
	return &ClickstreamRecord{
		Inbound:  r.Inbound,
		Outbound: r.Outbound,
	}
}

// NewClickstreamRecord builds a record from raw ranked results of both directions
func NewClickstreamRecord(center valueobjects.ArticleTitle, sources, destinations []LinkClue, mainPage valueobjects.ArticleTitle) *ClickstreamRecord {
	return &ClickstreamRecord{
		Center:   center,
		Inbound:  FilterClues(sources, mainPage),
		Outbound: FilterClues(destinations, mainPage),
	}
}

// FilterClues truncates raw results to RawResultLimit, drops aggregate
// buckets and the main page, and keeps the top MaxCluesPerDirection.
func FilterClues(raw []LinkClue, mainPage valueobjects.ArticleTitle) []LinkClue {
	if mainPage == "" {
		mainPage = DefaultMainPage
	}
	if len(raw) > RawResultLimit {
		raw = raw[:RawResultLimit]
	}

	clues := make([]LinkClue, 0, MaxCluesPerDirection)
	for _, clue := range raw {
		if strings.HasPrefix(clue.Title.String(), AggregateBucketPrefix) {
			continue
		}
		if clue.Title == mainPage || clue.Title.IsZero() {
			continue
		}
		clues = append(clues, clue)
		if len(clues) == MaxCluesPerDirection {
			break
		}
	}
	return clues
}

// Neighbors returns inbound clues followed by outbound clues
func (r *ClickstreamRecord) Neighbors() []LinkClue {
	neighbors := make([]LinkClue, 0, len(r.Inbound)+len(r.Outbound))
	neighbors = append(neighbors, r.Inbound...)
	neighbors = append(neighbors, r.Outbound...)
	return neighbors
}

// IsEmpty reports whether the record has no clues in either direction
func (r *ClickstreamRecord) IsEmpty() bool {
	return len(r.Inbound) == 0 && len(r.Outbound) == 0
}
