// Package normalize repairs loosely-typed player payloads into canonical
// records. Normalize never rejects input: it always returns a best-effort
// record plus a list of advisory issues ("repair then report"). The
// transformation is idempotent: feeding a normalized record back through
// produces an identical record.
package normalize

import (
	"math"

	"github.com/alexpolo1/dwroller-sub001/internal/model"
)

// Field limits
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 2000
	MaxPoints            = 1_000_000
)

// tabFields are the sheet keys with explicit TabInfo struct fields.
// Everything else the client sent under tabInfo lands in Extra.
var tabFields = map[string]struct{}{
	"characteristics": {},
	"skills":          {},
	"renown":          {},
	"rp":              {},
	"xp":              {},
	"xpSpent":         {},
	"wounds":          {},
	"movement":        {},
	"description":     {},
	"gear":            {},
	"inventory":       {},
	"weapons":         {},
	"armour":          {},
}

// liftedFields are sheet keys that sloppy callers historically sent at
// the top level of the payload instead of under tabInfo
var liftedFields = []string{
	"characteristics", "skills", "renown", "rp", "xp", "xpSpent",
	"wounds", "movement", "description", "gear", "inventory",
	"weapons", "armour",
}

// Normalize repairs an arbitrary player payload into a canonical record.
// The returned issues are non-fatal; the record is always usable.
func Normalize(raw map[string]any) (*model.Player, []Issue) {
	var issues issueList
	if raw == nil {
		raw = map[string]any{}
	}

	p := &model.Player{
		Name:       model.PlayerName(normalizeName(asString(raw["name"]), &issues)),
		RollerInfo: copyMap(asMap(raw["rollerInfo"])),
		ShopInfo:   copyMap(asMap(raw["shopInfo"])),
		PwHash:     asString(raw["pwHash"]),
	}

	// Plaintext passwords must be hashed before persistence; flag but
	// never reject, and never copy the value into the record.
	if _, ok := raw["pw"]; ok {
		issues.add("pw", "plaintext password present")
	}

	p.RequisitionPoints = normalizeCount(raw["requisitionPoints"], "requisitionPoints", MaxPoints, &issues)
	p.RenownLevel = normalizeRenown(raw["renownLevel"], "renownLevel", &issues)

	tab := flattenTab(asMap(raw["tabInfo"]), &issues)
	liftTopLevel(raw, tab)
	p.Tab = normalizeTab(tab, &issues)

	return p, issues.issues
}

// normalizeName trims and collapses whitespace, truncating over-length
// names rather than rejecting them
func normalizeName(name string, issues *issueList) string {
	name = collapseWhitespace(name)
	if name == "" {
		issues.add("name", "name is empty")
		return name
	}
	if len([]rune(name)) > MaxNameLength {
		issues.add("name", "name exceeds %d characters, truncated", MaxNameLength)
		// The cut can land just past a space; re-collapse so the
		// truncated name is itself canonical
		name = collapseWhitespace(truncate(name, MaxNameLength))
	}
	return name
}

// flattenTab removes self-nested tabInfo keys, a corruption mode from
// earlier schema versions. Nested values merge underneath the outer
// object (outer keys win) and the loop repeats until no nesting remains,
// so arbitrarily deep corruption unwinds.
func flattenTab(tab map[string]any, issues *issueList) map[string]any {
	out := copyMap(tab)
	if out == nil {
		out = map[string]any{}
	}
	flagged := false
	for {
		nestedRaw, ok := out["tabInfo"]
		if !ok {
			break
		}
		delete(out, "tabInfo")
		if !flagged {
			issues.add("tabInfo", "nested tabInfo flattened")
			flagged = true
		}
		nested := asMap(nestedRaw)
		for k, v := range nested {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
	return out
}

// liftTopLevel pulls sheet fields callers placed beside tabInfo instead
// of inside it. Values already present under tabInfo win.
func liftTopLevel(raw, tab map[string]any) {
	for _, k := range liftedFields {
		if _, exists := tab[k]; exists {
			continue
		}
		if v, ok := raw[k]; ok {
			tab[k] = v
		}
	}
}

func normalizeTab(tab map[string]any, issues *issueList) model.TabInfo {
	t := model.TabInfo{
		Characteristics: normalizeCharacteristics(asMap(tab["characteristics"]), issues),
		Skills:          normalizeSkills(asMap(tab["skills"])),
		Renown:          normalizeRenown(tab["renown"], "tabInfo.renown", issues),
		Wounds:          normalizeCount(tab["wounds"], "tabInfo.wounds", math.MaxInt, issues),
		Movement:        normalizeCount(tab["movement"], "tabInfo.movement", math.MaxInt, issues),
		Gear:            normalizeLines(tab["gear"]),
		Inventory:       normalizeLines(tab["inventory"]),
		Weapons:         normalizeLines(tab["weapons"]),
		Armour:          normalizeArmour(asMap(tab["armour"])),
	}

	t.RP = normalizeCount(tab["rp"], "tabInfo.rp", MaxPoints, issues)
	t.XP = normalizeCount(tab["xp"], "tabInfo.xp", MaxPoints, issues)
	t.XPSpent = normalizeCount(tab["xpSpent"], "tabInfo.xpSpent", MaxPoints, issues)
	if t.XPSpent > t.XP {
		issues.add("tabInfo.xpSpent", "xpSpent exceeds xp, clamped")
		t.XPSpent = t.XP
	}

	desc := asString(tab["description"])
	if len([]rune(desc)) > MaxDescriptionLength {
		issues.add("tabInfo.description", "description exceeds %d characters, truncated", MaxDescriptionLength)
		desc = truncate(desc, MaxDescriptionLength)
	}
	t.Description = desc

	t.Extra = extraFields(tab)
	return t
}

// maxIntFloat is the first float64 past the int range. Range checks
// happen in float space because converting a float beyond the int
// range yields an unspecified value.
const maxIntFloat = float64(math.MaxInt64)

// normalizeCount coerces a value to an integer in [0, max]. Absent
// values default to 0 silently; unparseable or non-finite values become
// 0 with an issue, out-of-range values clamp with an issue.
func normalizeCount(v any, field string, max int, issues *issueList) int {
	if v == nil {
		return 0
	}
	f, ok := asNumber(v)
	if !ok {
		issues.add(field, "value is not a finite number, reset to 0")
		return 0
	}
	f = math.Round(f)
	if f < 0 {
		issues.add(field, "value %g below 0, clamped", f)
		return 0
	}
	if f >= maxIntFloat || f > float64(max) {
		issues.add(field, "value %g above %d, clamped", f, max)
		return max
	}
	return int(f)
}

// normalizeCharacteristics builds a fresh map with exactly the canonical
// keys. Lowercase keys are preferred, uppercase variants accepted,
// everything else defaults to 0. Values clamp into [0,100].
func normalizeCharacteristics(in map[string]any, issues *issueList) map[string]int {
	out := make(map[string]int, len(model.CharacteristicKeys))
	for _, key := range model.CharacteristicKeys {
		v, ok := in[key]
		if !ok {
			v, ok = in[upperKey(key)]
		}
		if !ok {
			out[key] = 0
			continue
		}
		f, numeric := asNumber(v)
		if !numeric {
			issues.add("tabInfo.characteristics."+key, "value is not a finite number, reset to 0")
			out[key] = 0
			continue
		}
		f = math.Round(f)
		switch {
		case f < 0:
			issues.add("tabInfo.characteristics."+key, "value %g out of range, clamped", f)
			out[key] = 0
		case f > 100:
			issues.add("tabInfo.characteristics."+key, "value %g out of range, clamped", f)
			out[key] = 100
		default:
			out[key] = int(f)
		}
	}
	return out
}

func upperKey(k string) string {
	// Characteristic keys are ASCII
	out := make([]byte, len(k))
	for i := 0; i < len(k); i++ {
		c := k[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

// normalizeSkills guarantees the canonical skill list is fully
// enumerated. Existing entries, including extras beyond the canonical
// vocabulary, are preserved untouched.
func normalizeSkills(in map[string]any) map[string]model.SkillRating {
	out := make(map[string]model.SkillRating, len(model.CanonicalSkills)+len(in))
	for name, v := range in {
		out[name] = normalizeSkillRating(v)
	}
	for _, name := range model.CanonicalSkills {
		if _, ok := out[name]; !ok {
			out[name] = model.SkillRating{}
		}
	}
	return out
}

func normalizeSkillRating(v any) model.SkillRating {
	switch r := v.(type) {
	case map[string]any:
		return model.SkillRating{
			Trained: asBool(r["trained"]),
			Plus10:  asBool(r["plus10"]),
			Plus20:  asBool(r["plus20"]),
		}
	case bool:
		return model.SkillRating{Trained: r}
	default:
		return model.SkillRating{}
	}
}

// normalizeRenown matches case-insensitively against the renown table,
// defaulting to None. Unmatched non-empty values are flagged.
func normalizeRenown(v any, field string, issues *issueList) string {
	s := asString(v)
	canonical, matched := model.CanonicalRenown(s)
	if !matched && collapseWhitespace(s) != "" {
		issues.add(field, "unknown renown %q, defaulted to %s", s, model.RenownNone)
	}
	return canonical
}

// normalizeLines coerces a gear/inventory/weapons list. Plain string
// entries become single-quantity lines; anything unrecognizable is
// dropped.
func normalizeLines(v any) []model.ItemLine {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []model.ItemLine
	for _, entry := range list {
		switch e := entry.(type) {
		case map[string]any:
			line := model.ItemLine{Name: asString(e["name"]), Quantity: 1}
			if f, ok := asNumber(e["quantity"]); ok {
				f = math.Round(f)
				switch {
				case f <= 0:
					line.Quantity = 0
				case f >= maxIntFloat:
					line.Quantity = math.MaxInt
				default:
					line.Quantity = int(f)
				}
			}
			out = append(out, line)
		case string:
			out = append(out, model.ItemLine{Name: e, Quantity: 1})
		}
	}
	return out
}

// normalizeArmour keeps body locations whose values coerce to numbers
func normalizeArmour(in map[string]any) map[string]int {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]int, len(in))
	for loc, v := range in {
		f, ok := asNumber(v)
		if !ok {
			continue
		}
		n := int(math.Round(f))
		if n < 0 {
			n = 0
		}
		out[loc] = n
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extraFields collects unknown sheet keys for forward compatibility
func extraFields(tab map[string]any) map[string]any {
	var out map[string]any
	for k, v := range tab {
		if _, known := tabFields[k]; known {
			continue
		}
		if out == nil {
			out = map[string]any{}
		}
		out[k] = v
	}
	return out
}

func copyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
