// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package artifact

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/policy-engine/pkg/types"
)

// DirSource reads one artifact per *.yaml, *.yml or *.json file in Dir.
// Files are read in name order. Subdirectories and dotfiles are skipped.
type DirSource struct {
	Dir string
}

// Load reads every artifact file in the directory.
func (s DirSource) Load(ctx context.Context) (LoadResult, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return LoadResult{}, fmt.Errorf("reading artifact directory %s: %w", s.Dir, err)
	}

	var res LoadResult
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		path := filepath.Join(s.Dir, name)
		a, err := readFile(path, ext)
		if err != nil {
			res.Warnings = append(res.Warnings, LoadWarning{Location: path, Err: err})
			continue
		}
		res.Artifacts = append(res.Artifacts, a)
	}
	return res, nil
}

func readFile(path, ext string) (types.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Artifact{}, err
	}

	var r record
	if ext == ".json" {
		err = json.Unmarshal(data, &r)
	} else {
		err = yaml.Unmarshal(data, &r)
	}
	if err != nil {
		return types.Artifact{}, fmt.Errorf("parse error: %w", err)
	}

	a, err := r.artifact()
	if err != nil {
		return a, err
	}
	if a.Text == "" && a.TextPath != "" {
		textPath := a.TextPath
		if !filepath.IsAbs(textPath) {
			textPath = filepath.Join(filepath.Dir(path), textPath)
		}
		body, err := os.ReadFile(textPath)
		if err != nil {
			return a, fmt.Errorf("reading text: %w", err)
		}
		a.Text = string(body)
		a.TextPath = textPath
	}
	return a, nil
}
