package main

import (
	"flag"
	"log"
	"os"

	fx "github.com/robotalks/uartecho/pkg/framework"
	"github.com/robotalks/uartecho/pkg/l1/events"
	"github.com/robotalks/uartecho/pkg/l1/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("UARTECHO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	mon, err := mqtt.NewMonitor(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	mon.OnMeta = func(hostID string, meta *mqtt.HostMeta) {
		if meta == nil {
			log.Printf("%s: offline", hostID)
			return
		}
		log.Printf("%s: online %s %s (%s)", hostID, meta.Transport, meta.Device, meta.Description)
	}
	mon.OnEvent = func(hostID string, env *events.Envelope, ev events.Event) {
		log.Printf("%s#%d: [%s] %s", hostID, env.Sequence, ev.Name(), ev.Serializable().String())
	}
	mon.OnError = func(topic string, err error) {
		log.Printf("%s: bad message: %v", topic, err)
	}
	fx.NewRunner().HandleSignals().RunOrFail(mon)
}
