package physics

import "github.com/san-kum/turbosim/internal/dynamo"

// Register adds the built-in physics modules to f.
func Register(f *dynamo.Family[dynamo.PhysicsModule]) {
	f.Register("EMWave", NewEMWave)
	f.Register("ChargedParticle", NewChargedParticle)
}
