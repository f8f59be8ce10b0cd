// Package dynamo provides the core contracts of the simulation orchestrator.
//
// A simulation is assembled from three independent families of pluggable
// components, all built from configuration by name:
//
//   - [PhysicsModule]: owns and advances a piece of physical state
//   - [ComputeTool]: shared numerical helpers such as particle pushers
//   - [Diagnostic]: samples published state on a schedule and writes it out
//
// Components never reference each other directly. During setup every module
// publishes named state into a [Resources] table and then inspects the table
// for the names it needs, keeping a typed [Handle] to the live value. Because
// published values are pointers to mutable containers, a publisher's later
// updates are visible to every subscriber without further coordination.
//
// # Example
//
//	func (p *Particle) ExchangeResources(pub dynamo.Publisher) {
//	    pub.Publish("Particle:position", p.position)
//	}
//
//	func (d *Probe) InspectResource(rs *dynamo.Resources) {
//	    if h, ok := dynamo.Find[*dynamo.Array](rs, "Particle:position"); ok {
//	        d.position = h
//	    }
//	}
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. A simulation runs its
// components one at a time, in registration order.
package dynamo
