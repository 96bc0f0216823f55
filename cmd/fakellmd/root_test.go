package main

import (
	"reflect"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b", []string{"a", "b"}},
		{" a , b ", []string{"a", "b"}},
		{"a,,b,", []string{"a", "b"}},
	}
	for _, c := range cases {
		if got := splitCSV(c.in); !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitCSV(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseAliases(t *testing.T) {
	got, err := parseAliases([]string{"GPT-X=qwen-2.5-coder-3b", " a = b "})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{"GPT-X": "qwen-2.5-coder-3b", "a": "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("aliases = %v", got)
	}

	for _, bad := range []string{"noequals", "=v", "k=", "="} {
		if _, err := parseAliases([]string{bad}); err == nil {
			t.Errorf("parseAliases(%q) accepted", bad)
		}
	}
}
