package config

import (
	"slices"
	"strings"

	"namethatpage-backend/domain/core/entities"
)

// SeedCorpus is the curated input of random article selection: the seed
// pages whose links form the candidate pool, and the rules that keep unsafe
// or non-article links out of it.
type SeedCorpus struct {
	// Categories are seed page titles, e.g. "Wikipedia:Vital_articles/Level/2"
	Categories []string `yaml:"categories" json:"categories" validate:"required,min=1,dive,required"`

	// Denylist terms are matched as case-insensitive substrings of a link's
	// title and display text
	Denylist []string `yaml:"denylist" json:"denylist" validate:"dive,required"`

	// ExcludedPrefixes reject titles by namespace prefix ("User:", "Talk:", ...)
	ExcludedPrefixes []string `yaml:"excluded_prefixes" json:"excluded_prefixes" validate:"dive,required"`

	// AllowedNamespaces restricts links to these namespace numbers; empty
	// allows any namespace not rejected by the built-in rules
	AllowedNamespaces []int `yaml:"allowed_namespaces" json:"allowed_namespaces"`
}

// DefaultSeedCorpus returns the built-in corpus
func DefaultSeedCorpus() SeedCorpus {
	return SeedCorpus{
		Categories: []string{
			"Wikipedia:Vital_articles/Level/1",
			"Wikipedia:Vital_articles/Level/2",
			"Wikipedia:Vital_articles/Level/3",
		},
		Denylist: []string{
			"sex", "porn", "nude", "nudity", "erotic", "fetish", "rape",
			"incest", "pedophil", "paedophil", "bestiality", "genital",
			"penis", "vagina", "masturbat", "orgasm", "prostitut",
			"brothel", "hentai", "bdsm", "stripper", "sodomy",
		},
		ExcludedPrefixes: []string{
			"Special:", "Media:", "User:", "User talk:", "Talk:",
			"Wikipedia:", "Wikipedia talk:", "File:", "File talk:",
			"Template:", "Template talk:", "Help:", "Help talk:",
			"Category:", "Category talk:", "Portal:", "Portal talk:",
			"Draft:", "Module:", "MediaWiki:",
		},
		AllowedNamespaces: []int{entities.NamespaceMain},
	}
}

// Denies reports whether text contains any denylisted term
func (c SeedCorpus) Denies(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range c.Denylist {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if strings.Contains(lower, term) {
			return true
		}
		// titles carry underscores where the reader sees spaces
		if strings.Contains(lower, strings.ReplaceAll(term, " ", "_")) {
			return true
		}
	}
	return false
}

// Admits reports whether a seed page link may enter the candidate pool
func (c SeedCorpus) Admits(link entities.PageLink) bool {
	if link.Title.IsZero() || !link.Exists {
		return false
	}
	if link.Namespace < 0 || entities.IsTalkNamespace(link.Namespace) || link.Namespace == entities.NamespaceUser {
		return false
	}
	if len(c.AllowedNamespaces) > 0 && !slices.Contains(c.AllowedNamespaces, link.Namespace) {
		return false
	}
	for _, prefix := range c.ExcludedPrefixes {
		if link.Title.HasPrefixFold(prefix) {
			return false
		}
	}
	return !c.Denies(link.Title.String()) && !c.Denies(link.Text)
}

// Filter returns the admitted links, preserving order
func (c SeedCorpus) Filter(links []entities.PageLink) []entities.PageLink {
	admitted := make([]entities.PageLink, 0, len(links))
	for _, link := range links {
		if c.Admits(link) {
			admitted = append(admitted, link)
		}
	}
	return admitted
}
