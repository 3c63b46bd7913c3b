package entities

import "namethatpage-backend/domain/core/valueobjects"

// MediaWiki namespace numbers used when filtering seed links
const (
	NamespaceMedia   = -2
	NamespaceSpecial = -1
	NamespaceMain    = 0
	NamespaceUser    = 2
	NamespaceProject = 4
)

// PageLink is an internal link found on a seed page
type PageLink struct {
	Title     valueobjects.ArticleTitle `json:"title"`
	Text      string                    `json:"text"`
	Namespace int                       `json:"ns"`
	Exists    bool                      `json:"exists"`
}

// IsTalkNamespace reports whether ns is one of the odd-numbered talk namespaces
func IsTalkNamespace(ns int) bool {
	return ns > 0 && ns%2 == 1
}
