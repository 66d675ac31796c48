// Package di wires the validator's collaborators with samber/do.
package di

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

// Injector is the dependency container handed to modules and handlers.
type Injector = do.Injector

// Module registers providers on an injector.
type Module func(Injector) error

// Runtime builds a fresh injector per invocation from a fixed module list.
type Runtime struct {
	modules []Module
}

// New creates a Runtime that applies modules, in order, on every Invoke.
func New(modules ...Module) *Runtime {
	return &Runtime{modules: modules}
}

// Invoke creates an injector, applies the runtime modules followed by extra,
// runs handler and shuts the injector down.
func (r *Runtime) Invoke(handler func(Injector) error, extra ...Module) error {
	injector := do.New()
	defer injector.Shutdown()

	for _, module := range append(append([]Module{}, r.modules...), extra...) {
		if module == nil {
			continue
		}

		err := module(injector)
		if err != nil {
			return err
		}
	}

	return handler(injector)
}

// CommandModule builds a module from the command being run, typically to
// register values derived from its flags.
type CommandModule func(cmd *cobra.Command) Module

// RunEWithRuntime adapts a handler to cobra's RunE, resolving dependencies
// from a fresh injector for each run.
func RunEWithRuntime(
	runtime *Runtime,
	handler func(cmd *cobra.Command, injector Injector) error,
	commandModules ...CommandModule,
) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		extra := make([]Module, 0, len(commandModules))
		for _, build := range commandModules {
			extra = append(extra, build(cmd))
		}

		return runtime.Invoke(func(injector Injector) error {
			return handler(cmd, injector)
		}, extra...)
	}
}
