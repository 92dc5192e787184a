package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/model"
)

// ObjectStore buffers events in memory and flushes them as one object per
// buffer-fill to an S3-compatible bucket. Grounded on
// original_source/logflow/sinks/s3.py's S3Sink.
type ObjectStore struct {
	bucket       string
	keyPrefix    string
	endpoint     string
	accessKey    string
	secretKey    string
	useSSL       bool
	format       string // json, text
	template     string
	messageField string
	bufferSize   int

	client *minio.Client
	log    *logging.Logger

	mu          sync.Mutex
	buffer      bytes.Buffer
	bufferCount int
}

func NewObjectStore() *ObjectStore { return &ObjectStore{} }

func (o *ObjectStore) Configure(cfg map[string]any) error {
	o.bucket, _ = cfg["bucket"].(string)
	if o.bucket == "" {
		return errs.NewConfigError("sink.objectstore", fmt.Errorf("bucket is required"))
	}
	o.keyPrefix, _ = cfg["key_prefix"].(string)
	o.endpoint, _ = cfg["endpoint"].(string)
	if o.endpoint == "" {
		o.endpoint = "s3.amazonaws.com"
	}
	o.accessKey, _ = cfg["aws_access_key_id"].(string)
	o.secretKey, _ = cfg["aws_secret_access_key"].(string)
	o.useSSL = true
	if v, ok := cfg["use_ssl"].(bool); ok {
		o.useSSL = v
	}

	o.format = "json"
	if v, ok := cfg["format"].(string); ok && v != "" {
		o.format = v
	}
	if o.format != "json" && o.format != "text" {
		return errs.NewConfigError("sink.objectstore", fmt.Errorf("invalid format: %s", o.format))
	}
	o.template = "{timestamp} {message}"
	if v, ok := cfg["template"].(string); ok && v != "" {
		o.template = v
	}
	o.messageField = "message"
	if v, ok := cfg["message_field"].(string); ok && v != "" {
		o.messageField = v
	}
	o.bufferSize = 10 * 1024 * 1024
	if v, ok := toInt(cfg["buffer_size"]); ok {
		o.bufferSize = v
	}

	var creds *credentials.Credentials
	if o.accessKey != "" && o.secretKey != "" {
		sessionToken, _ := cfg["aws_session_token"].(string)
		creds = credentials.NewStaticV4(o.accessKey, o.secretKey, sessionToken)
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(o.endpoint, &minio.Options{
		Creds:  creds,
		Secure: o.useSSL,
	})
	if err != nil {
		return errs.NewConfigError("sink.objectstore", err)
	}
	o.client = client
	o.log = logging.GetLogger("sink.objectstore")
	return nil
}

func (o *ObjectStore) generateKey() string {
	now := time.Now().UTC()
	datePart := now.Format("2006/01/02/15")
	timestamp := now.Format("20060102150405")
	if o.keyPrefix != "" {
		return fmt.Sprintf("%s/%s/logs_%s_%d.log", o.keyPrefix, datePart, timestamp, o.bufferCount)
	}
	return fmt.Sprintf("%s/logs_%s_%d.log", datePart, timestamp, o.bufferCount)
}

func (o *ObjectStore) Write(batch []*model.LogEvent) error {
	if len(batch) == 0 {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	for _, event := range batch {
		var line string
		if o.format == "json" {
			encoded, err := json.Marshal(event.ToMap())
			if err != nil {
				return &errs.SinkFailure{Sink: "objectstore", Err: err}
			}
			line = string(encoded) + "\n"
		} else {
			line = o.renderTemplate(event) + "\n"
		}
		o.buffer.WriteString(line)
		o.bufferCount++
	}

	if o.buffer.Len() >= o.bufferSize {
		return o.flushLocked()
	}
	return nil
}

func (o *ObjectStore) renderTemplate(event *model.LogEvent) string {
	context := map[string]any{
		"id":          event.ID,
		"timestamp":   event.Timestamp.Format(isoTimestampNoZone),
		"source_type": event.SourceType,
		"source_name": event.SourceName,
		"raw_data":    event.RawData,
	}
	for k, v := range event.Fields {
		context[k] = v
	}
	if msg, ok := event.Fields[o.messageField]; ok {
		context["message"] = msg
	} else {
		context["message"] = event.RawData
	}

	missing := false
	rendered := templateFieldRe.ReplaceAllStringFunc(o.template, func(token string) string {
		name := token[1 : len(token)-1]
		v, ok := context[name]
		if !ok {
			missing = true
			return token
		}
		return fmt.Sprintf("%v", v)
	})
	if missing {
		return fmt.Sprintf("%s %s", event.Timestamp.Format(isoTimestampNoZone), event.RawData)
	}
	return rendered
}

// flushLocked uploads the buffer as a single object. Caller holds o.mu.
func (o *ObjectStore) flushLocked() error {
	if o.bufferCount == 0 {
		return nil
	}

	key := o.generateKey()
	data := o.buffer.Bytes()
	_, err := o.client.PutObject(context.Background(), o.bucket, key,
		bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		o.log.Warn("flush to object store failed", logging.Fields{"key": key, "error": err.Error()})
		return &errs.SinkFailure{Sink: "objectstore", Err: err}
	}

	o.buffer.Reset()
	o.bufferCount = 0
	return nil
}

func (o *ObjectStore) Release() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flushLocked()
}
