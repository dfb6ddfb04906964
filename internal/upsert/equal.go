package upsert

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"
)

// ServerFields are assigned by the remote service and never compared.
var ServerFields = []string{
	"id",
	"createdDateTime",
	"lastModifiedDateTime",
	"modifiedDateTime",
	"version",
	"deletedDateTime",
	"renewedDateTime",
	"@odata.*",
	"*@odata.*",
}

// Differences lists the desired keys whose values differ from existing, sorted.
// Keys matching ServerFields or ignore are left out. Keys only present on the
// existing side are not considered.
func Differences(existing, desired map[string]any, ignore []string) []string {
	var changed []string
	for key, want := range desired {
		if ignored(key, ServerFields) || ignored(key, ignore) {
			continue
		}
		got, ok := existing[key]
		if !ok || !Equal(got, want) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)
	return changed
}

// Equal compares two attribute values after a JSON round trip, so that numbers,
// typed slices and maps compare the same way they would on the wire.
func Equal(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}

func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// ignored matches key against exact names and "*" glob patterns at either end.
func ignored(key string, patterns []string) bool {
	for _, p := range patterns {
		switch {
		case p == key:
			return true
		case strings.HasPrefix(p, "*") && strings.HasSuffix(p, "*") && len(p) > 1:
			if strings.Contains(key, strings.Trim(p, "*")) {
				return true
			}
		case strings.HasSuffix(p, "*"):
			if strings.HasPrefix(key, strings.TrimSuffix(p, "*")) {
				return true
			}
		case strings.HasPrefix(p, "*"):
			if strings.HasSuffix(key, strings.TrimPrefix(p, "*")) {
				return true
			}
		}
	}
	return false
}
