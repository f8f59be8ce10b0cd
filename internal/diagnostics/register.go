package diagnostics

import "github.com/san-kum/turbosim/internal/dynamo"

// Register adds the built-in diagnostics to f.
func Register(f *dynamo.Family[dynamo.Diagnostic]) {
	f.Register("field", NewFieldDiagnostic)
	f.Register("point", NewPointDiagnostic)
	f.Register("clock", NewClockDiagnostic)
	f.Register("grid", NewGridDiagnostic)
	f.Register("energy", NewEnergyDiagnostic)
}
