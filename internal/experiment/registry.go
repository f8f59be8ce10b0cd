package experiment

import (
	"github.com/san-kum/turbosim/internal/diagnostics"
	"github.com/san-kum/turbosim/internal/dynamo"
	"github.com/san-kum/turbosim/internal/integrators"
	"github.com/san-kum/turbosim/internal/physics"
)

// Registry holds one factory namespace per component family. A simulation
// is built from whatever is registered when it is constructed.
type Registry struct {
	Tools          *dynamo.Family[dynamo.ComputeTool]
	PhysicsModules *dynamo.Family[dynamo.PhysicsModule]
	Diagnostics    *dynamo.Family[dynamo.Diagnostic]
}

// NewRegistry returns a registry with nothing registered.
func NewRegistry() *Registry {
	return &Registry{
		Tools:          dynamo.NewFamily[dynamo.ComputeTool]("compute tool"),
		PhysicsModules: dynamo.NewFamily[dynamo.PhysicsModule]("physics module"),
		Diagnostics:    dynamo.NewFamily[dynamo.Diagnostic]("diagnostic"),
	}
}

// NewDefaultRegistry returns a registry with every built-in component.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	integrators.Register(r.Tools)
	physics.Register(r.PhysicsModules)
	diagnostics.Register(r.Diagnostics)
	return r
}

// Reset clears every family.
func (r *Registry) Reset() {
	r.Tools.Reset()
	r.PhysicsModules.Reset()
	r.Diagnostics.Reset()
}

func (r *Registry) NewTool(name string, owner dynamo.Owner, cfg dynamo.Config) (dynamo.ComputeTool, error) {
	return r.Tools.Construct(name, owner, cfg)
}

func (r *Registry) NewPhysicsModule(name string, owner dynamo.Owner, cfg dynamo.Config) (dynamo.PhysicsModule, error) {
	return r.PhysicsModules.Construct(name, owner, cfg)
}

func (r *Registry) NewDiagnostic(name string, owner dynamo.Owner, cfg dynamo.Config) (dynamo.Diagnostic, error) {
	return r.Diagnostics.Construct(name, owner, cfg)
}

// Types lists the registered names per family.
func (r *Registry) Types() map[string][]string {
	return map[string][]string{
		r.Tools.Kind():          r.Tools.Names(),
		r.PhysicsModules.Kind(): r.PhysicsModules.Names(),
		r.Diagnostics.Kind():    r.Diagnostics.Names(),
	}
}
