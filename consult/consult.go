// Package consult loads knowledge bases from files.
//
// The format is chosen by extension:
//
//	.yaml, .yml   YAML document with "facts" and "rules" lists of clause text
//	.db, .sqlite  SQLite clause store
//	anything else clause text, as read by the parser
package consult

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/brunokim/backchain/kb"
	"github.com/brunokim/backchain/logic"
	"github.com/brunokim/backchain/parser"
	"github.com/brunokim/backchain/store/sqlite"

	"gopkg.in/yaml.v3"
)

// Document is the YAML knowledge base format.
type Document struct {
	Facts []string `yaml:"facts"`
	Rules []string `yaml:"rules"`
}

// File loads a single knowledge base file.
func File(ctx context.Context, path string) (*kb.KB, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		k, err := YAML(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return k, nil
	case ".db", ".sqlite":
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		st, err := sqlite.OpenReadOnly(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer st.Close()
		k, err := st.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return k, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		clauses, err := parser.ParseClauses(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s:%w", path, err)
		}
		return kb.FromClauses(clauses), nil
	}
}

// Files loads every file in order into a single knowledge base.
func Files(ctx context.Context, paths ...string) (*kb.KB, error) {
	kbs := make([]*kb.KB, len(paths))
	for i, path := range paths {
		k, err := File(ctx, path)
		if err != nil {
			return nil, err
		}
		kbs[i] = k
	}
	return kb.Merge(kbs...), nil
}

// YAML reads a knowledge base from a YAML document. Facts must be ground; the final
// period of each clause is optional.
func YAML(data []byte) (*kb.KB, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	facts := make([]logic.Literal, len(doc.Facts))
	for i, text := range doc.Facts {
		fact, err := parser.ParseLiteral(strings.TrimSuffix(strings.TrimSpace(text), "."))
		if err != nil {
			return nil, fmt.Errorf("facts[%d]: %w", i, err)
		}
		facts[i] = fact
	}
	rules := make([]*logic.Rule, len(doc.Rules))
	for i, text := range doc.Rules {
		r, err := parseRule(text)
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		rules[i] = r
	}
	return kb.New(facts, rules)
}

func parseRule(text string) (*logic.Rule, error) {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	clauses, err := parser.ParseClauses(text)
	if err != nil {
		return nil, err
	}
	if len(clauses) != 1 {
		return nil, fmt.Errorf("want a single clause, got %d", len(clauses))
	}
	return clauses[0], nil
}
