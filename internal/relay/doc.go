// Package relay connects the accessory device to the rest of the building
// stack. Both relays are accessory.EventSinks.
//
// MQTTRelay mirrors every characteristic value onto a retained state topic
// and applies writes received on the matching set topic. HistoryRecorder
// stores numeric and boolean values in InfluxDB.
package relay
