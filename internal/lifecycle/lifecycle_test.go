package lifecycle

import "testing"

func TestParsePhase(t *testing.T) {
	tests := []struct {
		in      string
		want    Phase
		wantErr bool
	}{
		{"active", Active, false},
		{"Background", Background, false},
		{" inactive ", Inactive, false},
		{"foreground", Active, false},
		{"sleeping", Background, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePhase(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestInactiveIsNotActive(t *testing.T) {
	if Inactive.IsActive() || Background.IsActive() {
		t.Error("Only Active should allow animation")
	}
	if !Active.IsActive() {
		t.Error("Active should allow animation")
	}
}

func TestBroadcaster(t *testing.T) {
	b := NewBroadcaster(Active)

	var got []Phase
	unsubscribe := b.Subscribe(func(p Phase) { got = append(got, p) })

	b.Set(Active) // no change
	b.Set(Background)
	b.Set(Inactive)
	b.Set(Active)

	if len(got) != 3 {
		t.Fatalf("Expected 3 notifications, got %v", got)
	}
	if got[0] != Background || got[1] != Inactive || got[2] != Active {
		t.Errorf("Unexpected notifications: %v", got)
	}

	unsubscribe()
	unsubscribe()
	if b.Listeners() != 0 {
		t.Errorf("Expected no listeners, got %d", b.Listeners())
	}

	b.Set(Background)
	if len(got) != 3 {
		t.Errorf("Listener called after unsubscribe: %v", got)
	}
	if b.Current() != Background {
		t.Errorf("Expected current phase background, got %s", b.Current())
	}
}

func TestPhaseText(t *testing.T) {
	var p Phase
	if err := p.UnmarshalText([]byte("background")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	b, _ := p.MarshalText()
	if string(b) != "background" {
		t.Errorf("Expected background, got %s", b)
	}
}
