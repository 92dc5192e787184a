package sink

// isoTimestampNoZone matches the original's event.timestamp.isoformat()
// on a naive (zone-less) datetime: no trailing Z/offset, and a
// trimmed fractional-second part when it's all zero.
const isoTimestampNoZone = "2006-01-02T15:04:05.999999999"

func stringSlice(v any) ([]string, bool) {
	switch vv := v.(type) {
	case []string:
		return vv, true
	case []any:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
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

func toInt(v any) (int, bool) {
	switch vv := v.(type) {
	case int:
		return vv, true
	case int64:
		return int(vv), true
	case float64:
		return int(vv), true
	default:
		return 0, false
	}
}
