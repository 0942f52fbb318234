package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		cb           *tele.Callback
		key, payload string
	}{
		{nil, "", ""},
		{&tele.Callback{Unique: "product", Data: "7"}, "product", "7"},
		{&tele.Callback{Data: "\fto_cart|12"}, "to_cart", "12"},
		{&tele.Callback{Data: "cart"}, "cart", ""},
		{&tele.Callback{Data: "\fstatus|3|pending"}, "status", "3|pending"},
	}
	for _, tc := range cases {
		k, p := ParseCallbackData(tc.cb)
		if k != tc.key || p != tc.payload {
			t.Fatalf("ParseCallbackData(%+v) = %q, %q", tc.cb, k, p)
		}
	}
}

func TestJoin(t *testing.T) {
	if got := Join("|", int64(3), "pending", 2); got != "3|pending|2" {
		t.Fatalf("unexpected %q", got)
	}
}
