// Package config defines the engine's typed configuration surface and
// a convenience YAML loader for it. Loading itself is an external
// collaborator's job in the full engine (asset pipelines, CLI flag
// parsing, hot reload); this package only owns the struct shape and
// the one loader the ambient stack calls for: resolving relative
// asset/voxel-type paths against the config file's own directory, the
// way VoxelTypeSpecifications::from_ron_file resolves paths against
// its RON file's parent directory in voxel_types.rs.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gekko3d/corex/physics"
)

// WindowConfig describes the output surface. Window creation itself is
// excluded by spec; this only carries the values a caller's windowing
// layer needs to hand the engine a compatible surface.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
	VSync  bool   `yaml:"vsync"`
}

// RenderConfig configures the geometry pass and timestamp readback.
type RenderConfig struct {
	Wireframe     bool    `yaml:"wireframe"`
	MaxTimestamps uint32  `yaml:"max_timestamps"`
	Exposure      float32 `yaml:"exposure"`
}

// VoxelTypeConfig is one entry of the voxel type registry as it
// appears in a config file, mirroring VoxelTypeSpecification's
// externally-facing fields in voxel_types.rs. NormalMapPath is never
// opened by this module (asset decoding is excluded by spec); it is
// carried and path-resolved purely so a caller's asset loader receives
// an absolute path.
type VoxelTypeConfig struct {
	Name              string  `yaml:"name"`
	MassDensity       float32 `yaml:"mass_density"`
	SpecularReflect   float32 `yaml:"specular_reflectance"`
	RoughnessScale    float32 `yaml:"roughness_scale"`
	Metalness         float32 `yaml:"metalness"`
	EmissiveLuminance float32 `yaml:"emissive_luminance"`
	HasNormalMap      bool    `yaml:"has_normal_map"`
	NormalMapDirectX  bool    `yaml:"normal_map_directx"`
	NormalMapPath     string  `yaml:"normal_map_path,omitempty"`
}

// VoxelConfig groups the voxel-type registry's configuration-file
// surface.
type VoxelConfig struct {
	Types []VoxelTypeConfig `yaml:"types"`
}

// EngineConfig is the engine's complete typed configuration surface,
// tagged for a YAML external loader (the original engine's equivalent
// RON file uses the same field shape; see the config section of
// DESIGN.md for why YAML rather than RON here).
type EngineConfig struct {
	Window  WindowConfig         `yaml:"window"`
	Render  RenderConfig         `yaml:"render"`
	Physics physics.SolverConfig `yaml:"physics"`
	Voxel   VoxelConfig          `yaml:"voxel"`
	Debug   bool                 `yaml:"debug"`
}

// DefaultEngineConfig returns the documented defaults for every
// section that has one: the solver's documented iteration counts
// (§ solver configuration), a disabled-wireframe 1920x1080 vsynced
// window, and the timestamp query manager's default budget.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Window: WindowConfig{
			Title:  "corex",
			Width:  1920,
			Height: 1080,
			VSync:  true,
		},
		Render: RenderConfig{
			Wireframe:     false,
			MaxTimestamps: 64,
			Exposure:      1.0,
		},
		Physics: physics.DefaultSolverConfig(),
	}
}

// LoadEngineConfigYAML reads and parses path as YAML into an
// EngineConfig seeded with DefaultEngineConfig's values, then resolves
// every relative normal-map path in Voxel.Types against path's parent
// directory, mirroring resolve_paths's root_path.join(&path) behavior.
func LoadEngineConfigYAML(path string) (EngineConfig, error) {
	cfg := DefaultEngineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	root := filepath.Dir(path)
	cfg.Voxel.resolvePaths(root)

	return cfg, nil
}

// resolvePaths prepends root to every relative normal map path in the
// voxel type list, leaving absolute paths and empty paths untouched.
func (v *VoxelConfig) resolvePaths(root string) {
	for i := range v.Types {
		t := &v.Types[i]
		if t.NormalMapPath == "" || filepath.IsAbs(t.NormalMapPath) {
			continue
		}
		t.NormalMapPath = filepath.Join(root, t.NormalMapPath)
	}
}
