package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/ua-parser/uap-go/uaparser"

	"github.com/souzomain/logflow/internal/errs"
	"github.com/souzomain/logflow/internal/model"
)

// lookupPool bounds how many blocking external lookups (DNS, GeoIP)
// run concurrently. spec §9's design note calls for running each
// enricher lookup on a worker pool so a slow DNS query cannot stall
// the reader goroutine driving the rest of the pipeline.
type lookupPool struct {
	sem chan struct{}
}

func newLookupPool(size int) *lookupPool {
	if size <= 0 {
		size = 8
	}
	return &lookupPool{sem: make(chan struct{}, size)}
}

func (p *lookupPool) run(ctx context.Context, fn func() (any, error)) (any, error) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	type result struct {
		value any
		err   error
	}
	resultCh := make(chan result, 1)
	go func() {
		v, err := fn()
		resultCh <- result{v, err}
	}()

	select {
	case r := <-resultCh:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Enricher attaches externally-sourced information to an event: table
// lookup, IP geolocation, forward/reverse DNS, or user-agent parsing.
// Grounded on original_source/logflow/processors/enrich.py's
// EnrichProcessor. Geo enrichment uses github.com/oschwald/geoip2-golang;
// user-agent parsing uses github.com/ua-parser/uap-go — both drawn
// from the wider example pack (no teacher dependency covers these
// concerns).
type Enricher struct {
	enrichType       string
	sourceField      string
	targetField      string
	lookupTable      map[string]any
	defaultValue     any
	preserveExisting bool
	ignoreMissing    bool

	geoReader *geoip2.Reader
	uaParser  *uaparser.Parser
	pool      *lookupPool
	timeout   time.Duration
}

func NewEnricher() *Enricher {
	return &Enricher{pool: newLookupPool(8), timeout: 3 * time.Second}
}

func (e *Enricher) Configure(cfg map[string]any) error {
	e.enrichType = "none"
	if v, ok := cfg["enrich_type"].(string); ok && v != "" {
		e.enrichType = v
	}
	switch e.enrichType {
	case "lookup", "geo", "dns", "useragent", "none":
	default:
		return errs.NewConfigError("processor.enricher", fmt.Errorf("invalid enrichment type: %s", e.enrichType))
	}

	e.sourceField, _ = cfg["source_field"].(string)
	if e.sourceField == "" {
		return errs.NewConfigError("processor.enricher", fmt.Errorf("source_field is required"))
	}
	e.targetField, _ = cfg["target_field"].(string)
	if e.targetField == "" {
		return errs.NewConfigError("processor.enricher", fmt.Errorf("target_field is required"))
	}

	e.defaultValue = cfg["default_value"]
	e.preserveExisting = true
	if v, ok := cfg["preserve_existing"].(bool); ok {
		e.preserveExisting = v
	}
	e.ignoreMissing = true
	if v, ok := cfg["ignore_missing"].(bool); ok {
		e.ignoreMissing = v
	}

	switch e.enrichType {
	case "lookup":
		e.lookupTable = make(map[string]any)
		if table, ok := cfg["lookup_table"].(map[string]any); ok {
			for k, v := range table {
				e.lookupTable[k] = v
			}
		}
		if lookupFile, ok := cfg["lookup_file"].(string); ok && lookupFile != "" {
			data, err := os.ReadFile(lookupFile)
			if err != nil {
				return errs.NewConfigError("processor.enricher", fmt.Errorf("lookup file not found: %s", lookupFile))
			}
			var fileData map[string]any
			if err := json.Unmarshal(data, &fileData); err != nil {
				return errs.NewConfigError("processor.enricher", fmt.Errorf("invalid JSON in lookup file: %w", err))
			}
			for k, v := range fileData {
				e.lookupTable[k] = v
			}
		}
	case "geo":
		dbPath, _ := cfg["geo_db_path"].(string)
		if dbPath == "" {
			return errs.NewConfigError("processor.enricher", fmt.Errorf("geo_db_path is required for geo enrichment"))
		}
		reader, err := geoip2.Open(dbPath)
		if err != nil {
			return errs.NewConfigError("processor.enricher", fmt.Errorf("error loading GeoIP database: %w", err))
		}
		e.geoReader = reader
	case "useragent":
		regexesPath, _ := cfg["ua_regexes_path"].(string)
		if regexesPath == "" {
			return errs.NewConfigError("processor.enricher", fmt.Errorf("ua_regexes_path is required for useragent enrichment"))
		}
		parser, err := uaparser.New(regexesPath)
		if err != nil {
			return errs.NewConfigError("processor.enricher", fmt.Errorf("error loading UA regexes: %w", err))
		}
		e.uaParser = parser
	}
	return nil
}

func (e *Enricher) Process(event *model.LogEvent) (*model.LogEvent, error) {
	sourceValue := e.fieldValue(event)
	if sourceValue == "" {
		if e.ignoreMissing {
			return event, nil
		}
		event.Metadata["enrich_error"] = fmt.Sprintf("source field not found: %s", e.sourceField)
		return event, nil
	}

	if _, exists := event.Fields[e.targetField]; exists && e.preserveExisting {
		return event, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	switch e.enrichType {
	case "lookup":
		value, ok := e.lookupTable[sourceValue]
		if !ok {
			value = e.defaultValue
		}
		if value != nil {
			event.Fields[e.targetField] = value
		}
	case "geo":
		e.enrichGeo(ctx, event, sourceValue)
	case "dns":
		e.enrichDNS(ctx, event, sourceValue)
	case "useragent":
		e.enrichUserAgent(event, sourceValue)
	}
	return event, nil
}

func (e *Enricher) enrichGeo(ctx context.Context, event *model.LogEvent, sourceValue string) {
	ip := net.ParseIP(sourceValue)
	if ip == nil {
		if !e.ignoreMissing {
			event.Metadata["enrich_error"] = fmt.Sprintf("invalid IP address: %s", sourceValue)
		}
		return
	}
	if ip.IsPrivate() {
		return
	}

	result, err := e.pool.run(ctx, func() (any, error) {
		return e.geoReader.City(ip)
	})
	if err != nil {
		event.Metadata["enrich_error"] = err.Error()
		return
	}
	city := result.(*geoip2.City)

	info := map[string]any{
		"country_code":   city.Country.IsoCode,
		"country_name":   city.Country.Names["en"],
		"city_name":      city.City.Names["en"],
		"continent_code": city.Continent.Code,
		"latitude":       city.Location.Latitude,
		"longitude":      city.Location.Longitude,
		"timezone":       city.Location.TimeZone,
		"postal_code":    city.Postal.Code,
	}
	if len(city.Subdivisions) > 0 {
		info["region_name"] = city.Subdivisions[0].Names["en"]
		info["region_code"] = city.Subdivisions[0].IsoCode
	}
	event.Fields[e.targetField] = info
}

func (e *Enricher) enrichDNS(ctx context.Context, event *model.LogEvent, sourceValue string) {
	result, err := e.pool.run(ctx, func() (any, error) {
		if ip := net.ParseIP(sourceValue); ip != nil {
			names, err := net.DefaultResolver.LookupAddr(ctx, sourceValue)
			if err != nil || len(names) == 0 {
				return nil, err
			}
			return names[0], nil
		}
		addrs, err := net.DefaultResolver.LookupHost(ctx, sourceValue)
		if err != nil || len(addrs) == 0 {
			return nil, err
		}
		return addrs[0], nil
	})
	if err != nil {
		if e.defaultValue != nil {
			event.Fields[e.targetField] = e.defaultValue
		} else if !e.ignoreMissing {
			event.Metadata["enrich_error"] = fmt.Sprintf("DNS lookup failed for: %s", sourceValue)
		}
		return
	}
	event.Fields[e.targetField] = result
}

func (e *Enricher) enrichUserAgent(event *model.LogEvent, sourceValue string) {
	client := e.uaParser.Parse(sourceValue)
	info := map[string]any{
		"browser_family": client.UserAgent.Family,
		"browser_version": fmt.Sprintf("%s.%s.%s", client.UserAgent.Major, client.UserAgent.Minor, client.UserAgent.Patch),
		"os_family":       client.Os.Family,
		"os_version":      fmt.Sprintf("%s.%s.%s", client.Os.Major, client.Os.Minor, client.Os.Patch),
		"device_family":   client.Device.Family,
		"device_brand":    client.Device.Brand,
		"device_model":    client.Device.Model,
	}
	event.Fields[e.targetField] = info
}

func (e *Enricher) fieldValue(event *model.LogEvent) string {
	if e.sourceField == "raw_data" {
		return event.RawData
	}
	v, ok := event.Fields[e.sourceField]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (e *Enricher) Release() error {
	if e.geoReader != nil {
		return e.geoReader.Close()
	}
	return nil
}
