package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/logging"
	"github.com/souzomain/logflow/internal/model"
)

// SearchCluster writes batches to an Elasticsearch/OpenSearch-compatible
// bulk API. Grounded on original_source/logflow/sinks/elasticsearch.py
// and opensearch.py, which share the same index-pattern-substitution and
// bulk-retry shape.
type SearchCluster struct {
	indexPattern string
	batchSize    int
	maxRetries   int
	initialBack  time.Duration
	maxBack      time.Duration

	client *elasticsearch.Client
	log    *logging.Logger
}

func NewSearchCluster() *SearchCluster { return &SearchCluster{} }

func (s *SearchCluster) Configure(cfg map[string]any) error {
	hosts, ok := stringSlice(cfg["hosts"])
	if !ok || len(hosts) == 0 {
		return errs.NewConfigError("sink.searchcluster", fmt.Errorf("hosts are required"))
	}

	s.indexPattern = "logs-{yyyy}.{MM}.{dd}"
	if v, ok := cfg["index"].(string); ok && v != "" {
		s.indexPattern = v
	}

	s.batchSize = 1000
	if v, ok := toInt(cfg["batch_size"]); ok {
		s.batchSize = v
	}
	s.maxRetries = 3
	if v, ok := toInt(cfg["max_retries"]); ok {
		s.maxRetries = v
	}
	s.initialBack = 2 * time.Second
	s.maxBack = 60 * time.Second

	esCfg := elasticsearch.Config{Addresses: hosts}
	if username, ok := cfg["username"].(string); ok && username != "" {
		esCfg.Username = username
		esCfg.Password, _ = cfg["password"].(string)
	}
	if apiKey, ok := cfg["api_key"].(string); ok && apiKey != "" {
		esCfg.APIKey = apiKey
	}
	if cloudID, ok := cfg["cloud_id"].(string); ok && cloudID != "" {
		esCfg.CloudID = cloudID
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return errs.NewConfigError("sink.searchcluster", err)
	}
	s.client = client
	s.log = logging.GetLogger("sink.searchcluster")
	return nil
}

func (s *SearchCluster) formatIndex(ts time.Time) string {
	repl := strings.NewReplacer(
		"{yyyy}", ts.Format("2006"),
		"{MM}", ts.Format("01"),
		"{dd}", ts.Format("02"),
		"{HH}", ts.Format("15"),
	)
	return repl.Replace(s.indexPattern)
}

func (s *SearchCluster) Write(batch []*model.LogEvent) error {
	if len(batch) == 0 {
		return nil
	}

	for start := 0; start < len(batch); start += s.batchSize {
		end := start + s.batchSize
		if end > len(batch) {
			end = len(batch)
		}
		if err := s.bulkWrite(batch[start:end]); err != nil {
			return &errs.SinkFailure{Sink: "searchcluster", Err: err}
		}
	}
	return nil
}

func (s *SearchCluster) bulkWrite(chunk []*model.LogEvent) error {
	var body bytes.Buffer
	for _, event := range chunk {
		meta := map[string]map[string]string{
			"index": {"_index": s.formatIndex(event.Timestamp), "_id": event.ID},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		docLine, err := json.Marshal(event.ToMap())
		if err != nil {
			return err
		}
		body.Write(metaLine)
		body.WriteByte('\n')
		body.Write(docLine)
		body.WriteByte('\n')
	}

	// maxRetries is the total number of bulk attempts, never fewer than one.
	attempts := s.maxRetries
	if attempts < 1 {
		attempts = 1
	}
	backoff := s.initialBack
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		req := esapi.BulkRequest{Body: bytes.NewReader(body.Bytes())}
		resp, err := req.Do(context.Background(), s.client)
		if err == nil {
			defer resp.Body.Close()
			if !resp.IsError() {
				return nil
			}
			lastErr = fmt.Errorf("bulk request returned status %s", resp.Status())
		} else {
			lastErr = err
		}

		if attempt == attempts-1 {
			break
		}
		s.log.Warn("bulk write failed, retrying", logging.Fields{"attempt": attempt, "error": lastErr.Error()})
		time.Sleep(backoff)
		backoff *= 2
		if backoff > s.maxBack {
			backoff = s.maxBack
		}
	}
	return lastErr
}

func (s *SearchCluster) Release() error { return nil }
