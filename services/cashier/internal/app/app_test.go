package app

import (
	"context"
	"testing"

	"github.com/appetiteclub/apt"
)

func TestNew(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Error("New() expected error without config")
	}
	a, err := New(apt.NewConfig(), nil)
	if err != nil || a == nil {
		t.Fatalf("New() = %v, %v", a, err)
	}
}

func TestLoadSettingsRequiresValues(t *testing.T) {
	if _, err := LoadSettings(apt.NewConfig()); err == nil {
		t.Error("LoadSettings() expected error without db.postgres.url and gateway.secret")
	}
}

func TestInitializeFailsWithoutSettings(t *testing.T) {
	a, _ := New(apt.NewConfig(), nil)
	if err := a.Initialize(context.Background()); err == nil {
		t.Error("Initialize() expected error without mandatory settings")
	}
	if err := a.Run(context.Background()); err == nil {
		t.Error("Run() expected error before Initialize")
	}
}
