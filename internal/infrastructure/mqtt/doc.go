// Package mqtt provides the MQTT client used to mirror accessory state onto
// a broker and accept writes from it.
//
// It manages:
//   - Connection to the broker with auto-reconnect
//   - Publishing with QoS and retained state
//   - Subscriptions that survive reconnects
//   - Last Will and Testament on the status topic for offline detection
//
// Topic layout (see Topics):
//
//	graylogic/hap/status                 online/offline (retained, LWT)
//	graylogic/hap/{aid}/{iid}/state      characteristic value (retained)
//	graylogic/hap/{aid}/{iid}/set        write requests from other systems
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllCharacteristicSets(), 1,
//	    func(topic string, payload []byte) error {
//	        aid, iid, ok := mqtt.ParseCharacteristicTopic(topic)
//	        ...
//	    })
//
// Use TLS (cfg.Broker.TLS) outside local development.
package mqtt
