package io

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/slok/diffrun/internal/model"
)

// CatalogYAMLRepository loads workload catalogs from YAML files.
type CatalogYAMLRepository struct {
	fs fs.FS
}

// NewCatalogYAMLRepository creates a new YAML catalog repository.
func NewCatalogYAMLRepository(filesystem fs.FS) *CatalogYAMLRepository {
	return &CatalogYAMLRepository{fs: filesystem}
}

// GetCatalog loads a workload catalog from a YAML file and returns a validated
// domain model. Workload `input_file` paths are relative to the catalog file.
func (r *CatalogYAMLRepository) GetCatalog(ctx context.Context, catalogPath string) (model.Catalog, error) {
	data, err := fs.ReadFile(r.fs, catalogPath)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("reading catalog file: %w", err)
	}

	if ctx.Err() != nil {
		return model.Catalog{}, ctx.Err()
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.Catalog{}, fmt.Errorf("parsing YAML: %w", err)
	}

	catalog, err := cfg.toModel(r.fs, path.Dir(catalogPath))
	if err != nil {
		return model.Catalog{}, fmt.Errorf("invalid catalog: %w", err)
	}

	return catalog, nil
}

// CatalogConfig represents the YAML structure of a workload catalog.
type CatalogConfig struct {
	Arches    []string          `yaml:"arches"`
	Env       map[string]string `yaml:"env"`
	Timeout   string            `yaml:"timeout"`
	Digest    string            `yaml:"digest"`
	Workloads []WorkloadConfig  `yaml:"workloads"`
}

// WorkloadConfig represents the YAML structure of a single workload.
type WorkloadConfig struct {
	Name      string   `yaml:"name"`
	Reference string   `yaml:"reference"`
	Candidate string   `yaml:"candidate"`
	Args      []string `yaml:"args"`
	Input     *string  `yaml:"input,omitempty"`
	InputFile string   `yaml:"input_file,omitempty"`
	Timeout   string   `yaml:"timeout,omitempty"`
	Mode      string   `yaml:"mode,omitempty"`
}

func (c CatalogConfig) toModel(fsys fs.FS, baseDir string) (model.Catalog, error) {
	arches, err := model.NormalizeArches(c.Arches)
	if err != nil {
		return model.Catalog{}, fmt.Errorf("arches: %w", err)
	}

	timeout, err := parseTimeout(c.Timeout)
	if err != nil {
		return model.Catalog{}, err
	}

	digest := model.DigestAlgorithm(c.Digest)
	if digest != "" {
		if err := digest.Validate(); err != nil {
			return model.Catalog{}, err
		}
	}

	if len(c.Workloads) == 0 {
		return model.Catalog{}, fmt.Errorf("at least one workload is required: %w", model.ErrNotValid)
	}

	seen := map[string]struct{}{}
	workloads := make([]model.Workload, 0, len(c.Workloads))
	for _, wc := range c.Workloads {
		w, err := wc.toModel(fsys, baseDir)
		if err != nil {
			return model.Catalog{}, err
		}
		if _, ok := seen[w.Name]; ok {
			return model.Catalog{}, fmt.Errorf("workload %s: %w", w.Name, model.ErrAlreadyExists)
		}
		seen[w.Name] = struct{}{}
		workloads = append(workloads, w)
	}

	return model.Catalog{
		Arches:    arches,
		Env:       c.Env,
		Timeout:   timeout,
		Digest:    digest,
		Workloads: workloads,
	}, nil
}

func (c WorkloadConfig) toModel(fsys fs.FS, baseDir string) (model.Workload, error) {
	if c.Input != nil && c.InputFile != "" {
		return model.Workload{}, fmt.Errorf("workload %s: input and input_file are exclusive: %w", c.Name, model.ErrNotValid)
	}

	timeout, err := parseTimeout(c.Timeout)
	if err != nil {
		return model.Workload{}, fmt.Errorf("workload %s: %w", c.Name, err)
	}

	w := model.Workload{
		Name:      c.Name,
		Reference: c.Reference,
		Candidate: c.Candidate,
		Args:      c.Args,
		Timeout:   timeout,
		Mode:      model.OutputMode(c.Mode),
	}

	switch {
	case c.Input != nil:
		w.Input = []byte(*c.Input)
	case c.InputFile != "":
		// Absolute paths are resolved from the root of the filesystem.
		p := strings.TrimPrefix(c.InputFile, "/")
		if !path.IsAbs(c.InputFile) {
			p = path.Join(baseDir, p)
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return model.Workload{}, fmt.Errorf("workload %s: reading input file: %w", c.Name, err)
		}
		w.Input = data
	}

	if err := w.Validate(); err != nil {
		return model.Workload{}, err
	}

	return w, nil
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", s, model.ErrNotValid)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got: %s: %w", s, model.ErrNotValid)
	}
	return d, nil
}
