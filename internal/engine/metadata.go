package engine

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// frameworkHints maps well-known dependency names to framework tags
var frameworkHints = map[string]string{
	"react":   "react",
	"next":    "nextjs",
	"vue":     "vue",
	"angular": "angular",
	"svelte":  "svelte",
	"express": "express",
	"fastify": "fastify",
	"django":  "django",
	"flask":   "flask",
	"fastapi": "fastapi",
	"rails":   "rails",
	"actix-web": "actix",
	"axum":    "axum",
	"rocket":  "rocket",
	"flutter": "flutter",
	"github.com/gin-gonic/gin":   "gin",
	"github.com/labstack/echo":   "echo",
	"github.com/gofiber/fiber":   "fiber",
	"github.com/spf13/cobra":     "cobra",
	"github.com/urfave/cli":      "cli",
}

// probeMetadata extracts lightweight project metadata from a small fixed
// set of well-known manifest files. Best-effort and absent-tolerant: a
// missing or malformed manifest yields empty metadata, never an error.
func (e *Engine) probeMetadata(absRoot string) ProjectMetadata {
	meta := ProjectMetadata{}

	probes := []func(string, *ProjectMetadata) bool{
		probePackageJSON,
		probeGoMod,
		probeCargoToml,
		probePyprojectToml,
		probePubspecYAML,
	}
	for _, probe := range probes {
		if probe(absRoot, &meta) {
			break
		}
	}

	if meta.Name == "" {
		meta.Name = filepath.Base(absRoot)
	}
	meta.Frameworks = detectFrameworks(meta.Dependencies)
	return meta
}

func probePackageJSON(absRoot string, meta *ProjectMetadata) bool {
	data, err := os.ReadFile(filepath.Join(absRoot, "package.json"))
	if err != nil {
		return false
	}
	var pkg struct {
		Name            string            `json:"name"`
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}
	meta.Name = pkg.Name
	for dep := range pkg.Dependencies {
		meta.Dependencies = append(meta.Dependencies, dep)
	}
	for dep := range pkg.DevDependencies {
		meta.Dependencies = append(meta.Dependencies, dep)
	}
	sort.Strings(meta.Dependencies)
	return true
}

func probeGoMod(absRoot string, meta *ProjectMetadata) bool {
	f, err := os.Open(filepath.Join(absRoot, "go.mod"))
	if err != nil {
		return false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	inRequire := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "module "):
			meta.Name = filepath.Base(strings.TrimSpace(strings.TrimPrefix(line, "module ")))
		case strings.HasPrefix(line, "require ("):
			inRequire = true
		case inRequire && line == ")":
			inRequire = false
		case inRequire || strings.HasPrefix(line, "require "):
			entry := strings.TrimSpace(strings.TrimPrefix(line, "require "))
			fields := strings.Fields(entry)
			if len(fields) >= 2 && !strings.HasPrefix(fields[0], "//") {
				meta.Dependencies = append(meta.Dependencies, fields[0])
			}
		}
	}
	return true
}

func probeCargoToml(absRoot string, meta *ProjectMetadata) bool {
	data, err := os.ReadFile(filepath.Join(absRoot, "Cargo.toml"))
	if err != nil {
		return false
	}
	var cargo struct {
		Package struct {
			Name string `toml:"name"`
		} `toml:"package"`
		Dependencies map[string]any `toml:"dependencies"`
	}
	if err := toml.Unmarshal(data, &cargo); err != nil {
		return false
	}
	meta.Name = cargo.Package.Name
	for dep := range cargo.Dependencies {
		meta.Dependencies = append(meta.Dependencies, dep)
	}
	sort.Strings(meta.Dependencies)
	return true
}

func probePyprojectToml(absRoot string, meta *ProjectMetadata) bool {
	data, err := os.ReadFile(filepath.Join(absRoot, "pyproject.toml"))
	if err != nil {
		return false
	}
	var pyproject struct {
		Project struct {
			Name         string   `toml:"name"`
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return false
	}
	meta.Name = pyproject.Project.Name
	for _, dep := range pyproject.Project.Dependencies {
		// Strip version constraints: "django>=4.0" -> "django"
		name := strings.FieldsFunc(dep, func(r rune) bool {
			return r == '>' || r == '<' || r == '=' || r == '~' || r == '!' || r == ' ' || r == '['
		})
		if len(name) > 0 && name[0] != "" {
			meta.Dependencies = append(meta.Dependencies, name[0])
		}
	}
	return true
}

func probePubspecYAML(absRoot string, meta *ProjectMetadata) bool {
	data, err := os.ReadFile(filepath.Join(absRoot, "pubspec.yaml"))
	if err != nil {
		return false
	}
	var pubspec struct {
		Name         string         `yaml:"name"`
		Dependencies map[string]any `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(data, &pubspec); err != nil {
		return false
	}
	meta.Name = pubspec.Name
	for dep := range pubspec.Dependencies {
		meta.Dependencies = append(meta.Dependencies, dep)
	}
	sort.Strings(meta.Dependencies)
	return true
}

func detectFrameworks(deps []string) []string {
	seen := make(map[string]bool)
	var frameworks []string
	for _, dep := range deps {
		key := strings.ToLower(dep)
		if framework, ok := frameworkHints[key]; ok && !seen[framework] {
			seen[framework] = true
			frameworks = append(frameworks, framework)
			continue
		}
		// Versioned Go module paths: github.com/labstack/echo/v4
		for hint, framework := range frameworkHints {
			if strings.HasPrefix(key, hint+"/") && !seen[framework] {
				seen[framework] = true
				frameworks = append(frameworks, framework)
			}
		}
	}
	sort.Strings(frameworks)
	return frameworks
}
