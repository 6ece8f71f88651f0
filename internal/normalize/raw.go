package normalize

import (
	"encoding/json"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
)

// AsRaw converts a canonical record back into the loose payload form
// Normalize consumes. Extra sheet fields are splatted back to the top
// level of tabInfo so AsRaw/Normalize round-trip cleanly.
func AsRaw(p *model.Player) map[string]any {
	data, err := json.Marshal(p)
	if err != nil {
		// Player contains only JSON-encodable fields
		return map[string]any{}
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return map[string]any{}
	}
	if tab := asMap(raw["tabInfo"]); tab != nil {
		extra := asMap(tab["extra"])
		delete(tab, "extra")
		for k, v := range extra {
			tab[k] = v
		}
	}
	return raw
}

// Merge applies a partial payload over an existing record and
// re-normalizes the result. The tabInfo/rollerInfo/shopInfo maps merge
// at top-level-key granularity (incoming keys replace stored keys
// wholesale, no deeper merge); other fields replace outright. The
// record's name is its identity and is never changed by a merge.
// Nested-tabInfo corruption in the partial is flattened by the
// normalization pass, so untrusted callers cannot reintroduce it.
func Merge(existing *model.Player, partial map[string]any) (*model.Player, []Issue) {
	raw := AsRaw(existing)
	for key, v := range partial {
		switch key {
		case "name":
			// identity key, ignored
		case "tabInfo", "rollerInfo", "shopInfo":
			incoming := asMap(v)
			if incoming == nil {
				raw[key] = v
				continue
			}
			base := asMap(raw[key])
			if base == nil {
				base = map[string]any{}
			}
			for k2, v2 := range incoming {
				base[k2] = v2
			}
			raw[key] = base
		default:
			raw[key] = v
		}
	}
	return Normalize(raw)
}
