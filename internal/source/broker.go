package source

import (
	"context"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/model"
)

// Broker reads log lines from a message-broker topic. Grounded on
// original_source/logflow/sources/kafka.py's KafkaSource: same
// config surface (brokers, topics, group_id, auto_offset_reset),
// ported from aiokafka's async-for consumer loop to kafka-go's
// *Reader, which already implements consumer-group membership and
// offset commit.
type Broker struct {
	brokers         []string
	topics          []string
	groupID         string
	autoOffsetReset string
	extraMetadata   map[string]any

	readers []*kafka.Reader
	log     *logging.Logger
}

func NewBroker() *Broker {
	return &Broker{log: logging.GetLogger("source.broker")}
}

func (b *Broker) Name() string { return fmt.Sprintf("broker(%v)", b.topics) }

func (b *Broker) Configure(cfg map[string]any) error {
	brokers, ok := stringSlice(cfg["brokers"])
	if !ok || len(brokers) == 0 {
		return errs.NewConfigError("source.broker", fmt.Errorf("brokers is required"))
	}
	topics, ok := stringSlice(cfg["topics"])
	if !ok || len(topics) == 0 {
		return errs.NewConfigError("source.broker", fmt.Errorf("topics is required"))
	}
	b.brokers = brokers
	b.topics = topics
	b.groupID, _ = cfg["group_id"].(string)
	b.autoOffsetReset = "latest"
	if v, ok := cfg["auto_offset_reset"].(string); ok && v != "" {
		b.autoOffsetReset = v
	}
	if m, ok := cfg["metadata"].(map[string]any); ok {
		b.extraMetadata = m
	}

	startOffset := kafka.LastOffset
	if b.autoOffsetReset == "earliest" {
		startOffset = kafka.FirstOffset
	}

	b.readers = make([]*kafka.Reader, 0, len(b.topics))
	for _, topic := range b.topics {
		b.readers = append(b.readers, kafka.NewReader(kafka.ReaderConfig{
			Brokers:     b.brokers,
			Topic:       topic,
			GroupID:     b.groupID,
			StartOffset: startOffset,
			MinBytes:    1,
			MaxBytes:    10e6,
			MaxWait:     time.Second,
		}))
	}
	return nil
}

func (b *Broker) Read(ctx context.Context, errCh chan<- error) (<-chan *model.LogEvent, error) {
	out := make(chan *model.LogEvent)
	done := make(chan struct{}, len(b.readers))

	for _, r := range b.readers {
		go b.readTopic(ctx, r, out, errCh, done)
	}

	go func() {
		for range b.readers {
			<-done
		}
		close(out)
	}()

	return out, nil
}

func (b *Broker) readTopic(ctx context.Context, r *kafka.Reader, out chan<- *model.LogEvent, errCh chan<- error, done chan<- struct{}) {
	defer func() { done <- struct{}{} }()
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			reportSourceErr(errCh, b.Name(), err)
			time.Sleep(time.Second)
			continue
		}

		event := model.New("kafka", msg.Topic, string(msg.Value))
		event.Metadata["kafka_topic"] = msg.Topic
		event.Metadata["kafka_partition"] = msg.Partition
		event.Metadata["kafka_offset"] = msg.Offset
		event.Metadata["kafka_timestamp"] = msg.Time
		if msg.Key != nil {
			event.Metadata["kafka_key"] = string(msg.Key)
		}
		for k, v := range b.extraMetadata {
			event.Metadata[k] = v
		}

		select {
		case out <- event:
		case <-ctx.Done():
			return
		}
	}
}

func (b *Broker) Release() error {
	var firstErr error
	for _, r := range b.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func stringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
