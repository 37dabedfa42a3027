// Package accessory assembles characteristics into services, accessories
// and a device, and routes value changes to connected clients.
//
// Ownership runs downward: a Device owns Accessories, an Accessory owns
// Services, a Service owns characteristics. Characteristics hold only a
// non-owning handle to their Service and resolve the Device on every
// notification, so a characteristic whose service was detached (or whose
// accessory was removed) keeps working locally but notifies nobody.
//
// Routing:
//
//	characteristic.SetValue        -> Device.Notify(except none)
//	characteristic.SetUntypedValue -> Device.Notify(except writer)
//	Device.Notify                  -> Sender, for each subscribed connection
//	                               -> every EventSink
//
// The device identity and configuration number are persisted through a
// storage.Storage as YAML; see Device.Load.
package accessory
