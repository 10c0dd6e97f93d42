package topic

import "testing"

func TestBuilder(t *testing.T) {
	b := NewBuilder("dmf/v1")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"receiver", b.Receiver(), "dmf/v1/receiver"},
		{"receiver shared", b.ReceiverShared("hub"), "$share/hub/dmf/v1/receiver"},
		{"command", b.Command("tenant1", "device42"), "dmf/v1/command/tenant1/device42"},
		{"dead letter", b.DeadLetter(), "dmf/v1/deadletter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
