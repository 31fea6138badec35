package container

import (
	"testing"

	"whatsfleet/internal/app/container"
	infraContainer "whatsfleet/internal/infra/container"
)

func TestNewUseCaseContainer(t *testing.T) {
	cfg := createTestConfig()

	infraCont, err := infraContainer.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create infrastructure container: %v", err)
	}
	defer infraCont.Close()

	useCaseCont, err := container.NewUseCaseContainer(infraCont)
	if err != nil {
		t.Fatalf("NewUseCaseContainer() failed: %v", err)
	}

	if useCaseCont == nil {
		t.Fatal("NewUseCaseContainer() returned nil")
	}

	deviceUseCases := useCaseCont.GetDeviceUseCases()

	if deviceUseCases.Create == nil {
		t.Error("DeviceUseCases.Create is nil")
	}
	if deviceUseCases.Connect == nil {
		t.Error("DeviceUseCases.Connect is nil")
	}
	if deviceUseCases.Disconnect == nil {
		t.Error("DeviceUseCases.Disconnect is nil")
	}
	if deviceUseCases.Logout == nil {
		t.Error("DeviceUseCases.Logout is nil")
	}
	if deviceUseCases.Delete == nil {
		t.Error("DeviceUseCases.Delete is nil")
	}
	if deviceUseCases.List == nil {
		t.Error("DeviceUseCases.List is nil")
	}
	if deviceUseCases.Get == nil {
		t.Error("DeviceUseCases.Get is nil")
	}
	if deviceUseCases.SetProxy == nil {
		t.Error("DeviceUseCases.SetProxy is nil")
	}
	if deviceUseCases.Pair == nil {
		t.Error("DeviceUseCases.Pair is nil")
	}

	broadcastUseCases := useCaseCont.GetBroadcastUseCases()

	if broadcastUseCases.Create == nil {
		t.Error("BroadcastUseCases.Create is nil")
	}
	if broadcastUseCases.Cancel == nil {
		t.Error("BroadcastUseCases.Cancel is nil")
	}
	if broadcastUseCases.List == nil {
		t.Error("BroadcastUseCases.List is nil")
	}
	if broadcastUseCases.Get == nil {
		t.Error("BroadcastUseCases.Get is nil")
	}
}

func TestUseCaseContainer_DeviceUseCases(t *testing.T) {
	cfg := createTestConfig()

	infraCont, err := infraContainer.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create infrastructure container: %v", err)
	}
	defer infraCont.Close()

	useCaseCont, err := container.NewUseCaseContainer(infraCont)
	if err != nil {
		t.Fatalf("Failed to create use case container: %v", err)
	}

	deviceUseCases := useCaseCont.GetDeviceUseCases()

	tests := []struct {
		name    string
		useCase interface{}
	}{
		{"Create", deviceUseCases.Create},
		{"Connect", deviceUseCases.Connect},
		{"Disconnect", deviceUseCases.Disconnect},
		{"Logout", deviceUseCases.Logout},
		{"Delete", deviceUseCases.Delete},
		{"List", deviceUseCases.List},
		{"Get", deviceUseCases.Get},
		{"SetProxy", deviceUseCases.SetProxy},
		{"Pair", deviceUseCases.Pair},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.useCase == nil {
				t.Errorf("DeviceUseCases.%s is nil", tt.name)
			}
		})
	}
}

func TestUseCaseContainer_BroadcastUseCases(t *testing.T) {
	cfg := createTestConfig()

	infraCont, err := infraContainer.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create infrastructure container: %v", err)
	}
	defer infraCont.Close()

	useCaseCont, err := container.NewUseCaseContainer(infraCont)
	if err != nil {
		t.Fatalf("Failed to create use case container: %v", err)
	}

	broadcastUseCases := useCaseCont.GetBroadcastUseCases()

	tests := []struct {
		name    string
		useCase interface{}
	}{
		{"Create", broadcastUseCases.Create},
		{"Cancel", broadcastUseCases.Cancel},
		{"List", broadcastUseCases.List},
		{"Get", broadcastUseCases.Get},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.useCase == nil {
				t.Errorf("BroadcastUseCases.%s is nil", tt.name)
			}
		})
	}
}
