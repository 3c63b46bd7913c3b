package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	domainconfig "namethatpage-backend/domain/config"
	"namethatpage-backend/pkg/utils"

	"gopkg.in/yaml.v3"
)

// LoadSeedCorpus reads a YAML seed corpus. An empty path or a missing file
// yields the built-in corpus. Sections left out of the file keep their
// built-in values.
func LoadSeedCorpus(path string) (domainconfig.SeedCorpus, error) {
	if path == "" {
		return domainconfig.DefaultSeedCorpus(), nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domainconfig.DefaultSeedCorpus(), nil
	}
	if err != nil {
		return domainconfig.SeedCorpus{}, fmt.Errorf("failed to read seed corpus %s: %w", path, err)
	}

	corpus, err := DecodeSeedCorpus(bytes.NewReader(data))
	if err != nil {
		return domainconfig.SeedCorpus{}, fmt.Errorf("failed to load seed corpus %s: %w", path, err)
	}
	return corpus, nil
}

// DecodeSeedCorpus decodes and validates a YAML seed corpus document
func DecodeSeedCorpus(r io.Reader) (domainconfig.SeedCorpus, error) {
	var file domainconfig.SeedCorpus
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return domainconfig.SeedCorpus{}, fmt.Errorf("invalid yaml: %w", err)
	}

	corpus := domainconfig.DefaultSeedCorpus()
	if file.Categories != nil {
		corpus.Categories = file.Categories
	}
	if file.Denylist != nil {
		corpus.Denylist = file.Denylist
	}
	if file.ExcludedPrefixes != nil {
		corpus.ExcludedPrefixes = file.ExcludedPrefixes
	}
	if file.AllowedNamespaces != nil {
		corpus.AllowedNamespaces = file.AllowedNamespaces
	}

	if err := utils.ValidateStruct(corpus); err != nil {
		return domainconfig.SeedCorpus{}, err
	}
	return corpus, nil
}
