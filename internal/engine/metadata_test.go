package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeMetadata_PackageJSON(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "package.json", `{
  "name": "webapp",
  "dependencies": {"react": "^18.0.0", "axios": "^1.0.0"},
  "devDependencies": {"vitest": "^1.0.0"}
}`)

	meta := eng.probeMetadata(root)
	assert.Equal(t, "webapp", meta.Name)
	assert.Contains(t, meta.Dependencies, "react")
	assert.Contains(t, meta.Dependencies, "vitest")
	assert.Contains(t, meta.Frameworks, "react")
}

func TestProbeMetadata_GoMod(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "go.mod", `module github.com/acme/api

go 1.24

require (
	github.com/gin-gonic/gin v1.10.0
	github.com/stretchr/testify v1.11.1 // indirect
)
`)

	meta := eng.probeMetadata(root)
	assert.Equal(t, "api", meta.Name)
	assert.Contains(t, meta.Dependencies, "github.com/gin-gonic/gin")
	assert.Contains(t, meta.Frameworks, "gin")
}

func TestProbeMetadata_CargoToml(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "Cargo.toml", `[package]
name = "rustsvc"
version = "0.1.0"

[dependencies]
axum = "0.7"
serde = { version = "1", features = ["derive"] }
`)

	meta := eng.probeMetadata(root)
	assert.Equal(t, "rustsvc", meta.Name)
	assert.Contains(t, meta.Dependencies, "axum")
	assert.Contains(t, meta.Dependencies, "serde")
	assert.Contains(t, meta.Frameworks, "axum")
}

func TestProbeMetadata_PyprojectToml(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "pyproject.toml", `[project]
name = "pysvc"
dependencies = ["django>=4.0", "requests"]
`)

	meta := eng.probeMetadata(root)
	assert.Equal(t, "pysvc", meta.Name)
	assert.Contains(t, meta.Dependencies, "django")
	assert.Contains(t, meta.Dependencies, "requests")
	assert.Contains(t, meta.Frameworks, "django")
}

func TestProbeMetadata_PubspecYAML(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "pubspec.yaml", `name: mobile_app
dependencies:
  flutter:
    sdk: flutter
  http: ^1.0.0
`)

	meta := eng.probeMetadata(root)
	assert.Equal(t, "mobile_app", meta.Name)
	assert.Contains(t, meta.Dependencies, "flutter")
	assert.Contains(t, meta.Frameworks, "flutter")
}

func TestProbeMetadata_MissingManifests(t *testing.T) {
	eng, root := newTestEngine(t)

	meta := eng.probeMetadata(root)
	assert.NotEmpty(t, meta.Name, "falls back to the directory name")
	assert.Empty(t, meta.Dependencies)
	assert.Empty(t, meta.Frameworks)
}

func TestProbeMetadata_MalformedManifest(t *testing.T) {
	eng, root := newTestEngine(t)
	writeProjectFile(t, root, "package.json", `{not json at all`)

	meta := eng.probeMetadata(root)
	assert.Empty(t, meta.Dependencies, "malformed manifest yields empty metadata, never an error")
}
