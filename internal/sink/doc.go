// Package sink delivers decoded readings to the outside world.
//
// Every destination implements Sink. MQTT publishes the bare value to
// <prefix>/co2 and <prefix>/temperature, Influx writes line protocol over
// UDP, and Multi fans out to several sinks at once:
//
//	out := sink.NewMulti()
//	out.Add("mqtt", mqttSink)
//	out.Add("influx", influxSink)
//	err := sink.Publish(out, reading)
//
// A failure in one sink never blocks the others; the returned error joins one
// PublishError per failed sink (see Failures).
package sink
