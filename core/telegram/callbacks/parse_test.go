package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseData(t *testing.T) {
	cases := []struct {
		in, key, payload string
	}{
		{"T:A", "T", "T:A"},
		{"E:A:Plank", "E", "E:A:Plank"},
		{"FE:A", "FE", "FE:A"},
		{"garbage", "garbage", "garbage"},
		{"", "", ""},
		{"\fmenu|42", "menu", "42"},
		{"\fmenu", "menu", ""},
	}
	for _, tc := range cases {
		key, payload := ParseData(tc.in)
		if key != tc.key || payload != tc.payload {
			t.Fatalf("ParseData(%q) = %q, %q; want %q, %q", tc.in, key, payload, tc.key, tc.payload)
		}
	}
}

func TestParsePrefersUnique(t *testing.T) {
	key, payload := Parse(&tele.Callback{Unique: "menu", Data: "42"})
	if key != "menu" || payload != "42" {
		t.Fatalf("Parse = %q, %q", key, payload)
	}
	if key, payload := Parse(nil); key != "" || payload != "" {
		t.Fatalf("Parse(nil) = %q, %q", key, payload)
	}
}
