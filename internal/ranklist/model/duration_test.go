package model

import (
	"encoding/json"
	"testing"
)

func TestTimeDurationMillis(t *testing.T) {
	d := TimeDuration{Value: 2.5, Unit: UnitMinute}
	if got := d.Millis(); got != 150000 {
		t.Fatalf("Millis() = %v, want 150000", got)
	}
	bad := TimeDuration{Value: 10, Unit: "fortnight"}
	if got := bad.Millis(); got != -1 {
		t.Fatalf("unknown unit Millis() = %v, want -1", got)
	}
}

func TestTimeDurationIn(t *testing.T) {
	d := TimeDuration{Value: 90, Unit: UnitSecond}
	if got := d.In(UnitMinute, RoundFloor); got != 1 {
		t.Fatalf("90s floor to min = %v, want 1", got)
	}
	if got := d.In(UnitMinute, RoundCeil); got != 2 {
		t.Fatalf("90s ceil to min = %v, want 2", got)
	}
	if got := d.In(UnitMinute, RoundRound); got != 2 {
		t.Fatalf("90s round to min = %v, want 2", got)
	}
	if got := d.In(UnitMillisecond, RoundFloor); got != 90000 {
		t.Fatalf("90s to ms = %v, want 90000", got)
	}
}

func TestTimeDurationJSON(t *testing.T) {
	raw := []byte(`[150,"min"]`)
	var d TimeDuration
	if err := json.Unmarshal(raw, &d); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if d.Value != 150 || d.Unit != UnitMinute {
		t.Fatalf("decoded %v %q, want 150 min", d.Value, d.Unit)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `[150,"min"]` {
		t.Fatalf("encoded %s, want [150,\"min\"]", out)
	}
}

func TestTimeDurationJSONRejectsMalformed(t *testing.T) {
	for _, raw := range []string{`[150]`, `["150","min"]`, `{"value":150}`} {
		var d TimeDuration
		if err := json.Unmarshal([]byte(raw), &d); err == nil {
			t.Fatalf("expected error decoding %s", raw)
		}
	}
}
