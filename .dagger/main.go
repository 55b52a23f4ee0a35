// Splice CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/splice/internal/dagger"
)

// Splice is the main module for the Splice CI/CD pipeline
type Splice struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Splice CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Splice {
	return &Splice{
		Source: source,
	}
}

// goContainer returns a Go container with the project source mounted.
// Splice is pure Go, so CGO stays off and no system packages are needed.
//
// It is the shared foundation for tests, builds, and linting.
func (t *Splice) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("GOEXPERIMENT", "jsonv2").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", t.Source)
}

// Test runs the splice unit tests via "go test"
func (t *Splice) Test(ctx context.Context) (string, error) {
	return t.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
