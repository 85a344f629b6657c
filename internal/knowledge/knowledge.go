// Package knowledge holds the static texts Hawy is prompted with and the
// learning categories shown by the client.
package knowledge

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	knowledgeFile     = "knowledge.md"
	personaFile       = "persona.md"
	languageRulesFile = "language_rules.md"
)

//go:embed data/*.md
var embedded embed.FS

// Base is the fixed text placed at the head of every prompt.
type Base struct {
	Knowledge     string
	Persona       string
	LanguageRules string
}

// Default returns the embedded texts.
func Default() Base {
	b, err := Load("")
	if err != nil {
		// the embedded files are part of the binary
		panic(err)
	}
	return b
}

// Load returns the embedded texts, replacing each one with the file of the same
// name in dir when it exists. The texts are used verbatim.
func Load(dir string) (Base, error) {
	var b Base
	for _, f := range []struct {
		name string
		dst  *string
	}{
		{knowledgeFile, &b.Knowledge},
		{personaFile, &b.Persona},
		{languageRulesFile, &b.LanguageRules},
	} {
		text, err := read(dir, f.name)
		if err != nil {
			return Base{}, err
		}
		*f.dst = text
	}
	return b, nil
}

func read(dir, name string) (string, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("reading %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("data/" + name)
	if err != nil {
		return "", fmt.Errorf("reading embedded %s: %w", name, err)
	}
	return string(data), nil
}
