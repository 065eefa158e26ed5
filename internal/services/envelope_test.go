package services

import (
	"testing"
)

func TestExtractList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "direct array",
			raw:  `[{"id":1},{"id":2}]`,
			want: 2,
		},
		{
			name: "under data",
			raw:  `{"data":[{"id":1}]}`,
			want: 1,
		},
		{
			name: "under mails",
			raw:  `{"mails":[{"id":1},{"id":2},{"id":3}]}`,
			want: 3,
		},
		{
			name: "under users",
			raw:  `{"users":[{"id":1}]}`,
			want: 1,
		},
		{
			name: "nested one level",
			raw:  `{"data":{"mails":[{"id":1},{"id":2}]}}`,
			want: 2,
		},
		{
			name: "missing data key",
			raw:  `{"message":"ok"}`,
			want: 0,
		},
		{
			name: "data is null",
			raw:  `{"data":null}`,
			want: 0,
		},
		{
			name: "data is an object without lists",
			raw:  `{"data":{"id":1}}`,
			want: 0,
		},
		{
			name: "null body",
			raw:  `null`,
			want: 0,
		},
		{
			name: "not JSON at all",
			raw:  `<html>502 Bad Gateway</html>`,
			want: 0,
		},
		{
			name: "empty body",
			raw:  ``,
			want: 0,
		},
		{
			name: "scalar body",
			raw:  `42`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractList([]byte(tt.raw))
			if got == nil {
				t.Fatal("extractList returned nil, want empty slice")
			}
			if len(got) != tt.want {
				t.Errorf("extractList(%q) returned %d items, want %d", tt.raw, len(got), tt.want)
			}
		})
	}
}

func TestDecodeObjectStrict(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("plain object", func(t *testing.T) {
		var p payload
		if err := decodeObject([]byte(`{"name":"a"}`), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "a" {
			t.Errorf("Name = %q, want %q", p.Name, "a")
		}
	})

	t.Run("wrapped in data", func(t *testing.T) {
		var p payload
		if err := decodeObject([]byte(`{"data":{"name":"b"}}`), &p); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Name != "b" {
			t.Errorf("Name = %q, want %q", p.Name, "b")
		}
	})

	t.Run("non-object fails loudly", func(t *testing.T) {
		var p payload
		if err := decodeObject([]byte(`[1,2,3]`), &p); err == nil {
			t.Fatal("expected a decode error for an array payload")
		}
	})

	t.Run("garbage fails loudly", func(t *testing.T) {
		var p payload
		if err := decodeObject([]byte(`not json`), &p); err == nil {
			t.Fatal("expected a decode error for a non-JSON payload")
		}
	})
}

func TestMessageFrom(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"message key", `{"message":"NIM tidak terdaftar"}`, "NIM tidak terdaftar"},
		{"error key", `{"error":"invalid credentials"}`, "invalid credentials"},
		{"no message", `{"data":[]}`, ""},
		{"not json", `oops`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := messageFrom([]byte(tt.raw)); got != tt.want {
				t.Errorf("messageFrom(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
