package moderation

import (
	"errors"
	"testing"
)

func TestParseDecision(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Command
		err  error
	}{
		{name: "approve", text: "/approve_42", want: Command{Action: DecisionApprove, TargetID: 42}},
		{name: "reject", text: "/reject_7", want: Command{Action: DecisionReject, TargetID: 7}},
		{name: "surrounding space", text: "  /approve_42  ", want: Command{Action: DecisionApprove, TargetID: 42}},
		{name: "bot suffix", text: "/approve_42@verify_bot", want: Command{Action: DecisionApprove, TargetID: 42}},
		{name: "missing id", text: "/approve_", err: ErrMalformedCommand},
		{name: "non numeric id", text: "/reject_abc", err: ErrMalformedCommand},
		{name: "zero id", text: "/approve_0", err: ErrMalformedCommand},
		{name: "trailing junk", text: "/approve_42 now", err: ErrMalformedCommand},
		{name: "plain text", text: "hello", err: ErrNotDecision},
		{name: "other command", text: "/verify", err: ErrNotDecision},
		{name: "empty", text: "", err: ErrNotDecision},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseDecision(tc.text)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("err = %v, want %v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}
