package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tapRecorder struct {
	calls []string
	err   error
}

func (r *tapRecorder) tap(key string, modifiers ...string) error {
	r.calls = append(r.calls, Shortcut{Key: key, Modifiers: modifiers}.String())
	return r.err
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name      string
		request   string
		wantCalls []string
		wantErr   string
	}{
		{
			name:      "params",
			request:   `{"action": "shortcut", "event": "swipe_left", "params": {"key": "Tab", "modifiers": ["Command", "shift"]}}`,
			wantCalls: []string{"cmd+shift+tab"},
		},
		{
			name:      "binding config",
			request:   `{"action": "keystroke", "event": "dictation_start", "config": {"key": "space", "modifiers": ["option"]}}`,
			wantCalls: []string{"alt+space"},
		},
		{
			name:      "params win over config",
			request:   `{"action": "keystroke", "config": {"key": "a"}, "params": {"key": "b"}}`,
			wantCalls: []string{"b"},
		},
		{
			name:    "bad json",
			request: `{`,
			wantErr: "failed to decode request",
		},
		{
			name:    "unknown action",
			request: `{"action": "type", "params": {"key": "a"}}`,
			wantErr: "unknown action: type",
		},
		{
			name:    "no shortcut",
			request: `{"action": "keystroke"}`,
			wantErr: "no shortcut configured",
		},
		{
			name:    "missing key",
			request: `{"action": "keystroke", "config": {"modifiers": ["ctrl"]}}`,
			wantErr: "key is required",
		},
		{
			name:    "unknown modifier",
			request: `{"action": "keystroke", "config": {"key": "a", "modifiers": ["hyper"]}}`,
			wantErr: `unknown modifier "hyper"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &tapRecorder{}
			resp := handle(strings.NewReader(tt.request), rec.tap)

			if tt.wantErr != "" {
				if resp.Success || !strings.Contains(resp.Error, tt.wantErr) {
					t.Errorf("response = %+v, want error containing %q", resp, tt.wantErr)
				}
				if len(rec.calls) != 0 {
					t.Errorf("tapped %v on error", rec.calls)
				}
				return
			}
			if !resp.Success {
				t.Fatalf("response = %+v", resp)
			}
			if diff := cmp.Diff(tt.wantCalls, rec.calls); diff != "" {
				t.Errorf("taps mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestHandle_TapFailure(t *testing.T) {
	rec := &tapRecorder{err: errors.New("no accessibility permission")}
	resp := handle(strings.NewReader(`{"action": "shortcut", "event": "left_click", "params": {"key": "c", "modifiers": ["ctrl"]}}`), rec.tap)

	if resp.Success {
		t.Fatal("Success = true for a failed tap")
	}
	if !strings.Contains(resp.Error, "ctrl+c on left_click") {
		t.Errorf("Error = %q", resp.Error)
	}
}
