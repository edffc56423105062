package libbuild

import (
	"fmt"
	"os/exec"
	"slices"
	"strings"
)

// ToolChecker is an optional interface for components that run external
// tools.
//
// The orchestrator checks tools of a [Builder] or [BindingGenerator]
// implementing it right before the first command is started, so a missing
// toolchain fails with a clear message instead of a launch error. In
// documentation mode nothing is built, so only the generator is checked.
//
// # Example Implementation
//
//	func (b *GoBuilder) RequiredTools() []ToolRequirement {
//	    return []ToolRequirement{
//	        {Name: "go", Purpose: "Go compiler and toolchain"},
//	        {Name: "gcc", Alternatives: []string{"clang", "cc"}, Purpose: "C compiler"},
//	    }
//	}
//
//	func (b *GoBuilder) CheckTools() error {
//	    return CheckRequiredTools(b.RequiredTools())
//	}
type ToolChecker interface {
	// RequiredTools returns the list of tools this component needs.
	RequiredTools() []ToolRequirement

	// CheckTools verifies that all required tools are available.
	//
	// Returns nil if all required tools are found, or an error describing
	// which tools are missing. Optional tools don't cause errors if missing.
	CheckTools() error
}

// ToolRequirement describes a build tool dependency.
//
// Tool with alternatives:
//
//	ToolRequirement{
//	    Name: "gcc",
//	    Alternatives: []string{"clang", "cc"},
//	    Purpose: "C compiler",
//	}
type ToolRequirement struct {
	// Name is the primary tool binary name (e.g., "go", "bindgen").
	Name string

	// Alternatives are alternative tool names that can satisfy this requirement.
	Alternatives []string

	// Optional indicates this tool is optional and won't cause an error if missing.
	Optional bool

	// Purpose is a human-readable description of why this tool is needed.
	Purpose string
}

// StepToolCheck is the [StepError] step of a failed tool check.
const StepToolCheck = "tool check"

// CheckToolAvailable checks if a tool is available in the system PATH.
func CheckToolAvailable(tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("%s %w", tool, ErrMissingTool)
	}
	return nil
}

// found reports whether the tool or one of its alternatives is on PATH.
func (r ToolRequirement) found() bool {
	return slices.ContainsFunc(append([]string{r.Name}, r.Alternatives...), func(tool string) bool {
		return CheckToolAvailable(tool) == nil
	})
}

func (r ToolRequirement) String() string {
	if r.Purpose == "" {
		return r.Name
	}
	return fmt.Sprintf("%s (%s)", r.Name, r.Purpose)
}

// CheckRequiredTools verifies all required tools are available. A tool
// counts as found if its name or any alternative is on PATH. Missing optional
// tools are ignored.
//
// All missing tools are reported in one error wrapping [ErrMissingTool]:
//
//	go (Go compiler and toolchain), bindgen not found in PATH
func CheckRequiredTools(requirements []ToolRequirement) error {
	var missing []string

	for _, req := range requirements {
		if req.Optional || req.found() {
			continue
		}

		missing = append(missing, req.String())
	}

	if len(missing) == 0 {
		return nil
	}

	return fmt.Errorf("%s %w", strings.Join(missing, ", "), ErrMissingTool)
}

// checkTools runs CheckTools if component implements [ToolChecker]. A failure
// is a [StepError] that never ran.
func checkTools(component any) error {
	checker, ok := component.(ToolChecker)
	if !ok {
		return nil
	}

	if err := checker.CheckTools(); err != nil {
		return &StepError{
			Step: StepToolCheck,
			Msg:  "build tools missing",
			Err:  err,
		}
	}

	return nil
}
