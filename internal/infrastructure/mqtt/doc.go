// Package mqtt announces the Pillar Map API on an MQTT broker.
//
// MQTT is optional (mqtt.enabled). When enabled the API:
//   - Publishes a retained online status on pillarmap/system/status
//   - Registers a Last Will so a crash flips that status to offline
//   - Publishes a retained worker directory load event, so an API running
//     with an empty directory is visible on the plant dashboard
//
// Nothing is subscribed to. The broker is a notice board, not a command bus.
//
// # Security Considerations
//
//   - TLS should be enabled outside the plant network (cfg.Broker.TLS=true)
//   - Credentials come from PILLARMAP_MQTT_USERNAME / PILLARMAP_MQTT_PASSWORD
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT,
//	    mqtt.WithLogger(log.Component("mqtt")),
//	    mqtt.WithOnConnect(func(c *mqtt.Client) {
//	        c.PublishDirectoryLoaded(mqtt.NewDirectoryEvent(dir.Source(), dir.Len()))
//	    }),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
package mqtt
