// Package kafkaheader carries trace context and message metadata in kafka
// record headers.
package kafkaheader

import (
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

const (
	CommandType = "command-type"
	MessageID   = "message-id"
	OrderID     = "order-id"
)

var _ propagation.TextMapCarrier = (*Carrier)(nil)

// Carrier adapts record headers to the otel propagation API.
type Carrier []kafka.Header

func (c *Carrier) Get(key string) string {
	for _, h := range *c {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Set replaces an existing header with the same key.
func (c *Carrier) Set(key, value string) {
	for i, h := range *c {
		if h.Key == key {
			(*c)[i].Value = []byte(value)
			return
		}
	}
	*c = append(*c, kafka.Header{Key: key, Value: []byte(value)})
}

func (c *Carrier) Keys() []string {
	keys := make([]string, 0, len(*c))
	for _, h := range *c {
		keys = append(keys, h.Key)
	}
	return keys
}
