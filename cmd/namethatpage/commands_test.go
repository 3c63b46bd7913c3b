package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstArg(t *testing.T) {
	assert.Equal(t, "", firstArg(nil))
	assert.Equal(t, "Dog", firstArg([]string{"Dog", "Cat"}))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeJSON(&buf, map[string]string{"center": "Dog"}))

	assert.Equal(t, "{\n  \"center\": \"Dog\"\n}\n", buf.String())
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "article")
	assert.Contains(t, names, "graph")
	assert.Contains(t, names, "corpus")
	assert.NotNil(t, graphCmd.Flags().Lookup("blank"))
	assert.NotNil(t, graphCmd.Flags().Lookup("blue"))
}

func TestCorpusCommand_PrintsDefaultCorpus(t *testing.T) {
	t.Setenv("SEED_CORPUS_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ENVIRONMENT", "test")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"corpus"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Wikipedia:Vital_articles/Level/1")
}
