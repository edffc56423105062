package libbuild

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables read by [LoadConfig].
const (
	EnvManifestDir = "CARGO_MANIFEST_DIR"
	EnvOutDir      = "OUT_DIR"
	EnvProfile     = "PROFILE"
	EnvTargetOS    = "CARGO_CFG_TARGET_OS"
	EnvPrebuild    = "PREBUILD_LIB"
	EnvDev         = "NEUTRON_TUBE_DEV"
	EnvDocsRS      = "DOCS_RS"
)

// Defaults for the neutron test tube library.
const (
	DefaultLibName      = "ntrntesttube"
	DefaultModuleDir    = "libntrntesttube"
	DefaultArtifactsDir = "artifacts"
	DefaultEntryFile    = "main.go"
	DefaultScriptPath   = "build.rs"

	// ManifestFile is the optional configuration file in the manifest
	// directory.
	ManifestFile = "libbuild.yaml"

	// ProfileDebug is the build profile that enables the fan-out copy.
	ProfileDebug = "debug"
)

// DefaultTags selects the build variant without the ccv message filter.
// The filter pulls in a network dependency that is not needed for tests.
var DefaultTags = []string{"skip_ccv_msg_filter"}

// DefaultLDFlags strips DWARF symbol tables from the library.
var DefaultLDFlags = []string{"-w"}

// LookupFunc looks up an environment variable, like [os.LookupEnv].
type LookupFunc func(key string) (string, bool)

// Config is the complete input of one orchestrator run. It is populated once
// at process start and not modified afterwards.
type Config struct {
	// ManifestDir is the package directory holding the module directory.
	ManifestDir string
	// OutDir is the build output directory supplied by the build system.
	OutDir string
	// ModuleDir is the Go module compiled into the library.
	ModuleDir string
	// PrebuiltDir receives the library when Prebuild is set and holds the
	// documentation header.
	PrebuiltDir string
	// ScriptPath is registered as rerun trigger besides ModuleDir.
	ScriptPath string

	LibName   string
	EntryFile string
	Tags      []string
	LDFlags   []string

	// Platform is always the host platform. The library is built by the
	// host go toolchain without GOOS, so it has the host's format.
	Platform Platform
	// TargetOS is the build system's target OS, only used to warn about
	// cross builds.
	TargetOS string
	Profile  string

	// Prebuild rebuilds the library into PrebuiltDir unconditionally.
	Prebuild bool
	// ForceRebuild rebuilds the library into OutDir even if it exists.
	ForceRebuild bool
	// DocMode skips building and linking and uses DocHeader for bindings.
	DocMode bool

	DocHeader    string
	BindingsFile string
	FanOutDir    string
}

// Manifest is the format of [ManifestFile]. Unset fields keep their defaults.
type Manifest struct {
	LibName      string   `yaml:"lib_name"`
	ModuleDir    string   `yaml:"module_dir"`
	ArtifactsDir string   `yaml:"artifacts_dir"`
	EntryFile    string   `yaml:"entry_file"`
	Tags         []string `yaml:"tags"`
	LDFlags      []string `yaml:"ldflags"`
	BindingsFile string   `yaml:"bindings_file"`
	Script       string   `yaml:"script"`
	FanOut       struct {
		Depth *int   `yaml:"depth"`
		Dir   string `yaml:"dir"`
	} `yaml:"fan_out"`
}

// ReadManifest reads a [Manifest] from path. A missing file yields an empty
// manifest.
func ReadManifest(path string) (*Manifest, error) {
	manifest := &Manifest{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return manifest, nil
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	if manifest.FanOut.Depth != nil && *manifest.FanOut.Depth < 0 {
		return nil, fmt.Errorf("parse manifest %s: negative fan_out depth", path)
	}

	return manifest, nil
}

// LoadConfig builds the [Config] from the environment and the optional
// manifest file. The platform is the host's. An unsupported host or a
// missing OUT_DIR is an error.
func LoadConfig(lookup LookupFunc) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	platform, err := HostPlatform()
	if err != nil {
		return nil, err
	}

	outDir, ok := lookup(EnvOutDir)
	if !ok || outDir == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingEnv, EnvOutDir)
	}

	outDir, err = filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("absolute out dir: %w", err)
	}

	manifestDir, ok := lookup(EnvManifestDir)
	if !ok || manifestDir == "" {
		manifestDir = "."
	}

	manifestDir, err = filepath.Abs(manifestDir)
	if err != nil {
		return nil, fmt.Errorf("absolute manifest dir: %w", err)
	}

	manifest, err := ReadManifest(filepath.Join(manifestDir, ManifestFile))
	if err != nil {
		return nil, err
	}

	profile, _ := lookup(EnvProfile)
	prebuild, _ := lookup(EnvPrebuild)
	dev, _ := lookup(EnvDev)
	_, docMode := lookup(EnvDocsRS)
	targetOS, _ := lookup(EnvTargetOS)

	cfg := &Config{
		ManifestDir:  manifestDir,
		OutDir:       outDir,
		ModuleDir:    filepath.Join(manifestDir, withDefault(manifest.ModuleDir, DefaultModuleDir)),
		ScriptPath:   withDefault(manifest.Script, DefaultScriptPath),
		LibName:      withDefault(manifest.LibName, DefaultLibName),
		EntryFile:    withDefault(manifest.EntryFile, DefaultEntryFile),
		Tags:         DefaultTags,
		LDFlags:      DefaultLDFlags,
		Platform:     platform,
		TargetOS:     targetOS,
		Profile:      profile,
		Prebuild:     prebuild == "1",
		ForceRebuild: dev == "1",
		DocMode:      docMode,
		BindingsFile: withDefault(manifest.BindingsFile, DefaultBindingsFile),
	}

	if manifest.Tags != nil {
		cfg.Tags = manifest.Tags
	}

	if manifest.LDFlags != nil {
		cfg.LDFlags = manifest.LDFlags
	}

	cfg.PrebuiltDir = filepath.Join(cfg.ModuleDir, withDefault(manifest.ArtifactsDir, DefaultArtifactsDir))
	cfg.DocHeader = filepath.Join(cfg.PrebuiltDir, "lib"+cfg.LibName+".docrs.h")

	depth := DefaultFanOutDepth
	if manifest.FanOut.Depth != nil {
		depth = *manifest.FanOut.Depth
	}

	cfg.FanOutDir = FanOutDir(outDir, depth, withDefault(manifest.FanOut.Dir, DefaultFanOutSubdir))

	return cfg, nil
}

// LibraryFilename returns the platform specific library file name.
func (c *Config) LibraryFilename() (string, error) {
	return c.Platform.LibraryFilename(c.LibName)
}

// HeaderPath returns the header bindings are generated from: the placeholder
// in documentation mode, the header written by the build otherwise.
func (c *Config) HeaderPath() string {
	if c.DocMode {
		return c.DocHeader
	}
	return filepath.Join(c.OutDir, c.Platform.HeaderFilename(c.LibName))
}

// BindingsPath returns the path of the generated bindings file.
func (c *Config) BindingsPath() string {
	return filepath.Join(c.OutDir, c.BindingsFile)
}

// CrossTarget reports whether the build system targets another platform than
// the host the library is built for.
func (c *Config) CrossTarget() bool {
	if c.TargetOS == "" {
		return false
	}

	target, err := ParsePlatform(c.TargetOS)

	return err != nil || target != c.Platform
}

// IsDebug reports whether the debug profile is built.
func (c *Config) IsDebug() bool {
	return c.Profile == ProfileDebug
}

// BuildRequest returns the request for building the library at outputPath.
func (c *Config) BuildRequest(outputPath string) *BuildRequest {
	return &BuildRequest{
		SourceDir:  c.ModuleDir,
		EntryFile:  c.EntryFile,
		OutputPath: outputPath,
		Tags:       c.Tags,
		LDFlags:    c.LDFlags,
	}
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
