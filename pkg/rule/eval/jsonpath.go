package eval

import "strings"

// resolveJSONPath walks a dot/bracket path such as "items[0].price" over a
// dynamic value tree of map[string]interface{} and []interface{}. A
// missing key or out-of-range index yields nil rather than an error,
// matching spec.md's "missing property resolves to null" rule.
func resolveJSONPath(v interface{}, path string) interface{} {
	for _, segment := range splitPathSegments(path) {
		if segment.index != nil {
			list, ok := toListValue(v)
			if !ok || *segment.index < 0 || *segment.index >= len(list) {
				return nil
			}
			v = list[*segment.index]
			continue
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[segment.key]
	}
	return v
}

type pathSegment struct {
	key   string
	index *int
}

func splitPathSegments(path string) []pathSegment {
	path = strings.TrimPrefix(path, "$.")
	path = strings.TrimPrefix(path, "$")
	path = strings.TrimPrefix(path, ".")
	var segments []pathSegment
	for _, raw := range strings.Split(path, ".") {
		if raw == "" {
			continue
		}
		for {
			open := strings.IndexByte(raw, '[')
			if open < 0 {
				if raw != "" {
					segments = append(segments, pathSegment{key: raw})
				}
				break
			}
			if open > 0 {
				segments = append(segments, pathSegment{key: raw[:open]})
			}
			close := strings.IndexByte(raw[open:], ']')
			if close < 0 {
				break
			}
			idxStr := raw[open+1 : open+close]
			idx := parseIndexLiteral(idxStr)
			segments = append(segments, pathSegment{index: &idx})
			raw = raw[open+close+1:]
			if raw == "" {
				break
			}
		}
	}
	return segments
}

func parseIndexLiteral(s string) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	if neg {
		n = -n
	}
	return n
}
