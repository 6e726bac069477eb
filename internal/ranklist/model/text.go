package model

import (
	"encoding/json"
	"sort"
)

const fallbackLang = "fallback"

// Text is an srk text value: either a plain string or a map of language tag
// to localized string with an optional "fallback" entry.
type Text struct {
	plain     string
	localized map[string]string
}

// NewText builds a plain text value.
func NewText(s string) Text {
	return Text{plain: s}
}

// String resolves the display string. Localized maps resolve to the fallback
// entry when present, otherwise to the first entry in sorted key order.
// Full language negotiation is a renderer concern and is not done here.
func (t Text) String() string {
	if t.localized == nil {
		return t.plain
	}
	if v, ok := t.localized[fallbackLang]; ok {
		return v
	}
	keys := make([]string, 0, len(t.localized))
	for k := range t.localized {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return t.localized[keys[0]]
}

// Canonical returns a deterministic string identity for the text, used as a
// comparison key (e.g. de-duplicating rows by organization). Plain strings
// are used as-is; localized maps use their canonical JSON encoding, which is
// stable because JSON object keys are emitted sorted.
func (t Text) Canonical() string {
	if t.localized == nil {
		return t.plain
	}
	data, err := json.Marshal(t.localized)
	if err != nil {
		return ""
	}
	return string(data)
}

// IsZero reports whether the text has no content at all.
func (t Text) IsZero() bool {
	return t.plain == "" && len(t.localized) == 0
}

// MarshalJSON encodes the original shape: a bare string or a language map.
func (t Text) MarshalJSON() ([]byte, error) {
	if t.localized != nil {
		return json.Marshal(t.localized)
	}
	return json.Marshal(t.plain)
}

// UnmarshalJSON accepts either a bare string or a language map.
func (t *Text) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '{' {
		t.plain = ""
		return json.Unmarshal(data, &t.localized)
	}
	t.localized = nil
	return json.Unmarshal(data, &t.plain)
}
