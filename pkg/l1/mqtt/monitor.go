package mqtt

import (
	"context"
	"encoding/json"

	"github.com/golang/glog"

	"github.com/robotalks/uartecho/pkg/l1/events"
)

// EventHandler receives decoded events.
type EventHandler func(hostID string, env *events.Envelope, ev events.Event)

// MetaHandler receives host metadata, meta is nil when the host went offline.
type MetaHandler func(hostID string, meta *HostMeta)

// Monitor subscribes to events of all hosts.
type Monitor struct {
	Queue   *Queue
	OnEvent EventHandler
	OnMeta  MetaHandler
	OnError func(topic string, err error)
}

// NewMonitor creates a Monitor.
func NewMonitor(brokerURL string) (*Monitor, error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Monitor{Queue: q}, nil
}

// Subscribe subscribes to topics of all hosts.
func (m *Monitor) Subscribe() {
	m.Queue.Sub(EventsTopic("+"), m.handleEvent)
	m.Queue.Sub(MetaTopic("+"), m.handleMeta)
}

// Run implements Runnable.
func (m *Monitor) Run(ctx context.Context) error {
	m.Subscribe()
	token := m.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	<-ctx.Done()
	return m.Queue.Close()
}

func (m *Monitor) handleEvent(topic string, payload []byte) {
	env, err := events.DecodeEnvelope(payload)
	if err != nil {
		m.reportError(topic, err)
		return
	}
	ev, err := env.Unwrap()
	if err != nil {
		m.reportError(topic, err)
		return
	}
	if h := m.OnEvent; h != nil {
		h(HostIDFromTopic(topic), env, ev)
	}
}

func (m *Monitor) handleMeta(topic string, payload []byte) {
	var meta *HostMeta
	if len(payload) > 0 {
		meta = &HostMeta{}
		if err := json.Unmarshal(payload, meta); err != nil {
			m.reportError(topic, err)
			return
		}
	}
	if h := m.OnMeta; h != nil {
		h(HostIDFromTopic(topic), meta)
	}
}

func (m *Monitor) reportError(topic string, err error) {
	if h := m.OnError; h != nil {
		h(topic, err)
		return
	}
	glog.Warningf("%s: %v", topic, err)
}
