package main

import (
	"io"
	"os"

	"github.com/alnah/go-slidecast"
	"github.com/alnah/go-slidecast/internal/server"
)

// Engine is what commands need from slidecast.Engine.
type Engine interface {
	server.Engine
	Close() error
}

// Compile-time interface implementation check.
var _ Engine = (*slidecast.Engine)(nil)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	NewEngine func(opts ...slidecast.Option) (Engine, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewEngine: newEngine,
	}
}

func newEngine(opts ...slidecast.Option) (Engine, error) {
	e, err := slidecast.NewEngine(opts...)
	if err != nil {
		return nil, err
	}
	return e, nil
}
