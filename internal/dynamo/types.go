package dynamo

// Publisher receives the resources a component shares during the publish pass.
type Publisher interface {
	Publish(name string, value any)
}

type PhysicsModule interface {
	ExchangeResources(pub Publisher)
	InspectResource(rs *Resources)
	Initialize() error
	Reset()
	Update() error
}

type ComputeTool interface {
	ExchangeResources(pub Publisher)
	InspectResource(rs *Resources)
	Initialize() error
	Update() error
}

type Diagnostic interface {
	InspectResource(rs *Resources)
	Initialize() error
	CheckStep() error
	DoDiagnostic() error
	Finalize() error
}

// Consumer is implemented by components that declare the resource names they
// read. Declared names nobody published are reported after inspection.
type Consumer interface {
	Consumes() []string
}

// Owner is the view of the simulation handed to every component factory.
type Owner interface {
	Clock() *Clock
	Grid() Grid
	FindTool(name string) (ComputeTool, error)
}

// Grid is the spatial collaborator. The core never looks inside it.
type Grid interface {
	Len() int
	Coordinates() []float64
	GenerateField() *Array
	CreateInterpolator(position float64) Interpolator
	Contains(position float64) bool
}

// Interpolator samples a field, laid out over grid coordinates, at a fixed position.
type Interpolator func(field []float64) float64

// Pusher advances a particle one time step, mutating position and momentum in place.
type Pusher interface {
	Push(position, momentum []float64, charge, mass float64, e, b []float64)
}

// Module provides no-op lifecycle methods. Embed it and override what a
// component actually needs.
type Module struct {
	owner Owner
	input Config
}

func NewModule(owner Owner, input Config) Module {
	return Module{owner: owner, input: input}
}

func (m *Module) Owner() Owner      { return m.owner }
func (m *Module) Input() Config     { return m.input }
func (m *Module) Initialize() error { return nil }
func (m *Module) Reset()            {}
func (m *Module) Update() error     { return nil }

func (m *Module) ExchangeResources(Publisher) {}
func (m *Module) InspectResource(*Resources)  {}
