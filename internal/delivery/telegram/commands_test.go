package telegram

import "testing"

func TestParseAlertID(t *testing.T) {
	tests := []struct {
		args string
		want uint
		ok   bool
	}{
		{"3", 3, true},
		{"  12 ", 12, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseAlertID(tt.args)
		if (err == nil) != tt.ok {
			t.Fatalf("ParseAlertID(%q) err = %v, want ok=%v", tt.args, err, tt.ok)
		}
		if got != tt.want {
			t.Fatalf("ParseAlertID(%q) = %d, want %d", tt.args, got, tt.want)
		}
	}
}
