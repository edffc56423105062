package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/neutron-org/libbuild"
)

// Set on build.
var version = "dev"

// ErrHelp is returned by [Flags.ParseArgs] if help or the version was
// requested.
var ErrHelp = flag.ErrHelp

// Flags are the command line flags. Boolean build switches only ever enable
// a behavior, so the environment stays the single source of defaults.
type Flags struct {
	name string

	force    bool
	prebuild bool
	docs     bool
	clean    bool
	check    bool

	goPath      string
	bindgenPath string

	versionFlag bool
	debugFlag   bool
	flagSet     *flag.FlagSet
}

func NewFlags(name string, output io.Writer) *Flags {
	flags := &Flags{name: name}

	flags.initFlagset(output)

	return flags
}

func (f *Flags) initFlagset(output io.Writer) {
	fs := flag.NewFlagSet(f.name+" [flags...]", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.BoolVar(
		&f.force,
		"force",
		f.force,
		"rebuild the library even if it exists (like "+libbuild.EnvDev+"=1)",
	)

	fs.BoolVar(
		&f.prebuild,
		"prebuild",
		f.prebuild,
		"also build into the prebuilt artifacts directory (like "+libbuild.EnvPrebuild+"=1)",
	)

	fs.BoolVar(
		&f.docs,
		"docs",
		f.docs,
		"documentation build: do not compile or link (like "+libbuild.EnvDocsRS+")",
	)

	fs.BoolVar(
		&f.clean,
		"clean",
		f.clean,
		"remove the library, its header and the bindings and exit",
	)

	fs.BoolVar(
		&f.check,
		"check",
		f.check,
		"check that all required tools are installed and exit",
	)

	fs.StringVar(
		&f.goPath,
		"go",
		"go",
		"go executable to build with",
	)

	fs.StringVar(
		&f.bindgenPath,
		"bindgen",
		"bindgen",
		"bindgen executable to generate bindings with",
	)

	fs.BoolVar(
		&f.debugFlag,
		"debug",
		f.debugFlag,
		"enable debug output",
	)

	fs.BoolVar(
		&f.versionFlag,
		"version",
		f.versionFlag,
		"show version and exit",
	)

	f.flagSet = fs
}

func (f *Flags) Debug() bool {
	return f.debugFlag
}

func (f *Flags) printVersionInformation() {
	fmt.Fprintf(f.flagSet.Output(), "%s: %s\n", f.name, version)

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	fmt.Fprintln(f.flagSet.Output(), buildInfo.String())
}

func (f *Flags) ParseArgs(args []string) error {
	if err := f.flagSet.Parse(args); err != nil {
		return fmt.Errorf("flag parse: %w", err)
	}

	// With version flag, just print the version and exit. Using [flag.ErrHelp]
	// the main binary is supposed to return with a non error exit code.
	if f.versionFlag {
		f.printVersionInformation()
		return fmt.Errorf("version requested: %w", ErrHelp)
	}

	if f.flagSet.NArg() > 0 {
		err := errors.New("unexpected arguments")
		fmt.Fprintln(f.flagSet.Output(), err.Error())
		f.flagSet.Usage()

		return err
	}

	return nil
}

// Apply enables the build switches given on the command line in cfg.
func (f *Flags) Apply(cfg *libbuild.Config) {
	cfg.ForceRebuild = cfg.ForceRebuild || f.force
	cfg.Prebuild = cfg.Prebuild || f.prebuild
	cfg.DocMode = cfg.DocMode || f.docs
}
