package domain

import (
	"encoding/json"
	"testing"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		raw  string
		want Decimal
		ok   bool
	}{
		{`10.5`, "10.5", true},
		{`"10.5"`, "10.5", true},
		{`-2.35`, "-2.35", true},
		{`42`, "42", true},
		{`"1.2608103"`, "1.2608103", true},
		{`"abc"`, "", false},
		{`null`, "", false},
		{``, "", false},
		{`{"x":1}`, "", false},
		// ParseFloat accepts these, JSON does not. A stored NaN would make
		// every subsequent read of the partition fail to marshal.
		{`"NaN"`, "", false},
		{`"Inf"`, "", false},
		{`"-Inf"`, "", false},
		{`"+Infinity"`, "", false},
		{`NaN`, "", false},
	}

	for _, c := range cases {
		got, ok := ParseDecimal(json.RawMessage(c.raw))
		if ok != c.ok {
			t.Errorf("ParseDecimal(%s): ok = %v, want %v", c.raw, ok, c.ok)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDecimal(%s) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestDecimalFromStringRejectsNonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "Inf", "-Inf", "Infinity"} {
		if _, err := DecimalFromString(s); err == nil {
			t.Errorf("DecimalFromString(%q): expected error", s)
		}
	}
	if d, err := DecimalFromString("10.5"); err != nil || d != "10.5" {
		t.Errorf("DecimalFromString(10.5) = %q, %v", d, err)
	}
}

func TestDecimalRoundTrip(t *testing.T) {
	// 10.5 must survive marshal/unmarshal without becoming 10.499999...
	var p LocationPoint
	in := []byte(`{"lat":"1.2608103","lng":"103.8457987","timestamp":"2024-01-15T08:00:00Z","accuracy":10.5,"speed":2.3}`)
	if err := json.Unmarshal(in, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"lat":1.2608103,"lng":103.8457987,"timestamp":"2024-01-15T08:00:00Z","accuracy":10.5,"speed":2.3}`
	if string(out) != want {
		t.Errorf("round trip:\n got %s\nwant %s", out, want)
	}
}

func TestDecimalOmittedWhenAbsent(t *testing.T) {
	p := LocationPoint{Lat: "1.26", Lng: "103.84", Timestamp: "2024-01-15T08:00:00Z"}
	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"lat":1.26,"lng":103.84,"timestamp":"2024-01-15T08:00:00Z"}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestPartitionKey(t *testing.T) {
	r := LocationRecord{DeviceID: "d_123", Day: "20240115"}
	if got := r.PartitionKey(); got != "device:d_123:date:20240115" {
		t.Errorf("PartitionKey() = %q", got)
	}
}
