package model

import (
	"encoding/json"
	"testing"
)

func TestTextPlain(t *testing.T) {
	var txt Text
	if err := json.Unmarshal([]byte(`"ACM-ICPC World Finals"`), &txt); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if txt.String() != "ACM-ICPC World Finals" {
		t.Fatalf("String() = %q", txt.String())
	}
	if txt.Canonical() != "ACM-ICPC World Finals" {
		t.Fatalf("Canonical() = %q", txt.Canonical())
	}
	out, err := json.Marshal(txt)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"ACM-ICPC World Finals"` {
		t.Fatalf("encoded %s", out)
	}
}

func TestTextLocalized(t *testing.T) {
	var txt Text
	raw := `{"zh-CN":"清华大学","fallback":"Tsinghua University"}`
	if err := json.Unmarshal([]byte(raw), &txt); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if txt.String() != "Tsinghua University" {
		t.Fatalf("String() = %q, want fallback entry", txt.String())
	}

	// Canonical identity is stable across key order in the source JSON.
	var reordered Text
	if err := json.Unmarshal([]byte(`{"fallback":"Tsinghua University","zh-CN":"清华大学"}`), &reordered); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if txt.Canonical() != reordered.Canonical() {
		t.Fatalf("canonical forms differ: %q vs %q", txt.Canonical(), reordered.Canonical())
	}
}

func TestTextLocalizedNoFallback(t *testing.T) {
	var txt Text
	if err := json.Unmarshal([]byte(`{"zh-CN":"清华大学","en-US":"Tsinghua"}`), &txt); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	// First key in sorted order wins when no fallback entry exists.
	if txt.String() != "Tsinghua" {
		t.Fatalf("String() = %q, want en-US entry", txt.String())
	}
}

func TestTextIsZero(t *testing.T) {
	if !(Text{}).IsZero() {
		t.Fatal("empty text should be zero")
	}
	if NewText("x").IsZero() {
		t.Fatal("non-empty text should not be zero")
	}
}

func TestSolutionResultJSONNull(t *testing.T) {
	var r SolutionResult
	if err := json.Unmarshal([]byte(`null`), &r); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if r != ResultNone {
		t.Fatalf("decoded %q, want ResultNone", r)
	}
	out, err := json.Marshal(ResultNone)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != "null" {
		t.Fatalf("encoded %s, want null", out)
	}
}

func TestUserKeyAndField(t *testing.T) {
	u := User{ID: "42", Name: NewText("alice"), Organization: NewText("MIT"), Marker: "female"}
	if u.Key() != "42" {
		t.Fatalf("Key() = %q, want the id", u.Key())
	}
	if u.Field("organization") != "MIT" || u.Field("marker") != "female" {
		t.Fatalf("field lookup failed: %q / %q", u.Field("organization"), u.Field("marker"))
	}
	if u.Field("nonexistent") != "" {
		t.Fatalf("unknown field = %q, want empty", u.Field("nonexistent"))
	}

	anon := User{Name: NewText("team red")}
	if anon.Key() != "team red" {
		t.Fatalf("Key() without id = %q, want the canonical name", anon.Key())
	}
	if !anon.IsOfficial() {
		t.Fatal("absent official flag defaults to official")
	}
}
