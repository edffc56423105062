package libbuild

import (
	"context"
)

// runCommonBuild executes the standard 3-step build process.
//
// # Process Flow
//
//  1. Create empty BuildResult
//  2. Call PrepareFunc to reconcile dependencies
//  3. Call BuildFunc to compile the library
//  4. Call FindFunc to locate written files
//  5. Return BuildResult with Success=true
//
// If any step fails, processing stops and the error is returned
// with Success=false. Later steps are not executed and files written
// by a failed step are left as they are.
func runCommonBuild(ctx context.Context, req *BuildRequest, steps CommonBuildSteps) (*BuildResult, error) {
	result := &BuildResult{
		Success: false,
		Steps:   []string{},
	}

	// Step 1: Prepare the module
	if err := steps.PrepareFunc(ctx, req, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 2: Compile the library
	if err := steps.BuildFunc(ctx, req, result); err != nil {
		result.Error = err
		return result, err
	}

	// Step 3: Find the written files
	artifacts, err := steps.FindFunc(req)
	if err != nil {
		result.Error = err
		return result, err
	}

	result.Artifacts = artifacts
	result.Success = true
	return result, nil
}
