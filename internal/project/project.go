// Package project resolves the display identity of a workspace from the
// manifest files commonly found at its root.
package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mpjhorner/specdash/internal/model"
)

type packageJSON struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`
}

type projectYAML struct {
	Name        string `yaml:"name"`
	Project     string `yaml:"project"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

type pyproject struct {
	Project struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
		Version     string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name        string `toml:"name"`
			Description string `toml:"description"`
			Version     string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

type cargo struct {
	Package struct {
		Name        string `toml:"name"`
		Description string `toml:"description"`
		Version     string `toml:"version"`
	} `toml:"package"`
}

// Resolve returns the project identity for root. Sources are tried in order:
// package.json, project.yaml, pyproject.toml, Cargo.toml; the first one with a
// name wins. The directory name is the final fallback.
func Resolve(root string) model.Project {
	resolvers := []func(string) (model.Project, bool){
		fromPackageJSON,
		fromProjectYAML,
		fromPyproject,
		fromCargo,
	}
	for _, resolve := range resolvers {
		if p, ok := resolve(root); ok {
			return p
		}
	}
	return model.Project{Name: filepath.Base(filepath.Clean(root))}
}

// FromYAMLFile reads a project.yaml style manifest at path
func FromYAMLFile(path string) (model.Project, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, false
	}
	var raw projectYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return model.Project{}, false
	}
	name := firstNonEmpty(raw.Name, raw.Project)
	return finish(name, raw.Description, raw.Version)
}

// Merge overlays the non-empty fields of override onto base
func Merge(base, override model.Project) model.Project {
	if override.Name != "" {
		base.Name = override.Name
	}
	if override.Description != "" {
		base.Description = override.Description
	}
	if override.Version != "" {
		base.Version = override.Version
	}
	return base
}

func fromPackageJSON(root string) (model.Project, bool) {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return model.Project{}, false
	}
	var raw packageJSON
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return model.Project{}, false
	}
	return finish(raw.Name, raw.Description, raw.Version)
}

func fromProjectYAML(root string) (model.Project, bool) {
	return FromYAMLFile(filepath.Join(root, "project.yaml"))
}

func fromPyproject(root string) (model.Project, bool) {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return model.Project{}, false
	}
	var raw pyproject
	if err := toml.Unmarshal(data, &raw); err != nil {
		return model.Project{}, false
	}
	if raw.Project.Name != "" {
		return finish(raw.Project.Name, raw.Project.Description, raw.Project.Version)
	}
	poetry := raw.Tool.Poetry
	return finish(poetry.Name, poetry.Description, poetry.Version)
}

func fromCargo(root string) (model.Project, bool) {
	data, err := os.ReadFile(filepath.Join(root, "Cargo.toml"))
	if err != nil {
		return model.Project{}, false
	}
	var raw cargo
	if err := toml.Unmarshal(data, &raw); err != nil {
		return model.Project{}, false
	}
	return finish(raw.Package.Name, raw.Package.Description, raw.Package.Version)
}

func finish(name, description, version string) (model.Project, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Project{}, false
	}
	return model.Project{
		Name:        name,
		Description: strings.TrimSpace(description),
		Version:     strings.TrimSpace(version),
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
