package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/uartecho/pkg/l1/events"
)

// TopicRoot is the first level of all echo host topics.
const TopicRoot = "uartecho"

// EventsTopic is where a host publishes events.
func EventsTopic(hostID string) string {
	return TopicRoot + "/" + hostID + "/events"
}

// MetaTopic is where a host publishes retained HostMeta while online.
func MetaTopic(hostID string) string {
	return TopicRoot + "/" + hostID + "/meta"
}

// HostIDFromTopic extracts the host ID from an events or meta topic.
func HostIDFromTopic(topic string) string {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[0] != TopicRoot {
		return ""
	}
	return items[1]
}

// HostMeta describes an echo host.
type HostMeta struct {
	Description string            `json:"description,omitempty"`
	Transport   string            `json:"transport,omitempty"`
	Device      string            `json:"device,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Publisher implements echo.Observer by publishing events.
// Publishing never waits for the broker.
type Publisher struct {
	Queue  *Queue
	HostID string
	Meta   HostMeta

	seq uint64
}

// NewPublisher creates a Publisher.
func NewPublisher(brokerURL, hostID string, meta HostMeta) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+MetaTopic(hostID), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID(TopicRoot + ":" + hostID)
	}
	p := &Publisher{
		Queue:  NewQueue(opts, topicPrefix),
		HostID: hostID,
		Meta:   meta,
	}
	p.Queue.OnConnect = func(*Queue) { p.publishMeta() }
	return p, nil
}

// Name implements Named.
func (p *Publisher) Name() string {
	return "mqtt-publisher"
}

// LineEchoed implements echo.Observer.
func (p *Publisher) LineEchoed(line []byte) {
	ev := &events.LineEchoed{}
	ev.Line = line
	p.publish(ev)
}

// LineDropped implements echo.Observer.
func (p *Publisher) LineDropped(line []byte) {
	ev := &events.LineDropped{}
	ev.Line = line
	p.publish(ev)
}

// ReceiveError implements echo.Observer.
func (p *Publisher) ReceiveError(err error) {
	ev := &events.ReceiveError{}
	ev.Message = err.Error()
	p.publish(ev)
}

func (p *Publisher) publish(ev events.Event) {
	env, err := events.Wrap(ev)
	if err != nil {
		glog.Errorf("encode event %x: %v", ev.TypeID(), err)
		return
	}
	env.HostId = p.HostID
	env.Sequence = atomic.AddUint64(&p.seq, 1)
	env.Timestamp = time.Now().UnixNano()
	data, err := env.Encode()
	if err != nil {
		glog.Errorf("encode envelope: %v", err)
		return
	}
	p.Queue.Pub(EventsTopic(p.HostID), data)
}

func (p *Publisher) publishMeta() {
	meta, err := json.Marshal(&p.Meta)
	if err != nil {
		glog.Errorf("encode meta: %v", err)
		return
	}
	p.Queue.PubWith(MetaTopic(p.HostID), meta, 1, true)
}

// Run implements Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	token := p.Queue.Connect()
	go func() {
		if token.Wait() && token.Error() != nil {
			glog.Warningf("MQTT connect: %v", token.Error())
		}
	}()
	<-ctx.Done()
	if p.Queue.Client.IsConnected() {
		p.Queue.PubWith(MetaTopic(p.HostID), nil, 1, true).WaitTimeout(time.Second)
	}
	return p.Queue.Close()
}
