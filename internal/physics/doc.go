// Package physics provides the built-in physics modules.
//
//   - [EMWave]: a travelling electric field wave laid over the grid,
//     published as "EMField:E"
//   - [ChargedParticle]: a single particle driven by "EMField:E", publishing
//     its position and momentum as (1, 3) arrays
//
// Modules share state only through published resources:
//
//	func (w *EMWave) ExchangeResources(pub dynamo.Publisher) {
//	    pub.Publish("EMField:E", w.E)
//	}
//
// Subscribers bind typed handles during inspection and read the live value
// on every update.
package physics
