package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		want    Date
		wantErr bool
	}{
		{input: "03/01/2026", want: NewDate(2026, time.March, 1)},
		{input: " 12/31/2025 ", want: NewDate(2025, time.December, 31)},
		{input: "1/2/2024", want: NewDate(2024, time.January, 2)},
		{input: "3/15/2026", want: NewDate(2026, time.March, 15)},
		{input: "12/5/2025", want: NewDate(2025, time.December, 5)},
		{input: "2026-03-01", wantErr: true},
		{input: "1/2/24", wantErr: true},
		{input: "13/01/2026", wantErr: true},
		{input: "02/30/2026", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want.Time) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Due Date `json:"due"`
	}
	if err := json.Unmarshal([]byte(`{"due":"07/04/2026"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"due":"07/04/2026"}` {
		t.Errorf("unexpected output %s", out)
	}

	if err := json.Unmarshal([]byte(`{"due":"2026-07-04"}`), &payload); err == nil {
		t.Error("expected error for ISO date")
	}
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
	}{
		{"time", time.Date(2026, time.July, 4, 0, 0, 0, 0, time.UTC)},
		{"string", "2026-07-04"},
		{"timestamp string", "2026-07-04 00:00:00+00:00"},
		{"bytes", []byte("2026-07-04")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("scan: %v", err)
			}
			if d.String() != "07/04/2026" {
				t.Errorf("got %q", d.String())
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("expected error scanning int")
	}
}
