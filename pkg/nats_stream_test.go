package pkg

import (
	"testing"
	"time"
)

func TestNATSStreamConfig(t *testing.T) {
	tests := []struct {
		name       string
		cfg        NATSStreamConfig
		wantErr    bool
		wantMaxAge time.Duration
		wantMsgs   int64
	}{
		{
			name:       "defaultsMaxAge",
			cfg:        NATSStreamConfig{Name: "KITCHEN_TICKETS", Subjects: []string{"kitchen.tickets.>"}},
			wantMaxAge: 24 * time.Hour,
		},
		{
			name:       "keepsLimits",
			cfg:        NATSStreamConfig{Name: "KITCHEN_TICKETS", Subjects: []string{"kitchen.tickets.>"}, MaxAge: time.Hour, MaxMsgs: 500},
			wantMaxAge: time.Hour,
			wantMsgs:   500,
		},
		{name: "missingName", cfg: NATSStreamConfig{Subjects: []string{"kitchen.tickets.>"}}, wantErr: true},
		{name: "missingSubjects", cfg: NATSStreamConfig{Name: "KITCHEN_TICKETS"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := tt.cfg.JetStreamConfig()
			if (err != nil) != tt.wantErr {
				t.Fatalf("JetStreamConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if sc.MaxAge != tt.wantMaxAge {
				t.Errorf("MaxAge = %v, want %v", sc.MaxAge, tt.wantMaxAge)
			}
			if sc.MaxMsgs != tt.wantMsgs {
				t.Errorf("MaxMsgs = %d, want %d", sc.MaxMsgs, tt.wantMsgs)
			}
			if sc.Name != tt.cfg.Name || len(sc.Subjects) != len(tt.cfg.Subjects) {
				t.Errorf("stream config = %+v", sc)
			}
		})
	}
}
