// Package characteristic implements the typed value cells that make up an
// accessory's addressable properties.
//
// A characteristic is a single named property of an accessory (power state,
// brightness, temperature). It carries fixed metadata (type, permissions,
// format, unit, bounds) and an optional current value of a declared Go type.
//
// # Key Types
//
//   - Generic[T]: the typed value cell. T is one of the types in Value.
//   - Characteristic: the type-erased interface every Generic[T] satisfies, so
//     cells of different T can live in one service.
//   - Notifier: the fan-out collaborator (the device) that pushes state to
//     subscribed connections.
//   - Owner: the non-owning handle back to the owning service, resolved on
//     every notification.
//
// # Write Paths
//
// There are three write paths with deliberately different contracts:
//
//	// Remote (untyped) write: may fail with ErrTypeMismatch, always notifies,
//	// never echoes back to the writer.
//	err := c.SetUntypedValue(json, connID)
//
//	// Local typed write: no-op when the value is unchanged, notifies everyone.
//	on.Set(true)
//
//	// In-process "as if remote" write: only local listeners are called.
//	on.SimulateRemoteWrite(&v, connID)
//
// # Thread Safety
//
// Every cell guards its value with its own mutex. The equality check and the
// update happen under one lock, so concurrent writers cannot lose a change
// notification. Notifiers and listeners are invoked after the lock is
// released and may call back into the cell.
package characteristic
