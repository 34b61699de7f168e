package mqtt

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/config"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/types"
)

func TestParseObservation(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "valid", payload: `{"year":2025,"month":1,"temperature_c":4.2}`},
		{name: "zero temperature is valid", payload: `{"year":2025,"month":12,"temperature_c":0}`},
		{name: "negative temperature", payload: `{"year":1940,"month":1,"temperature_c":-2.5}`},
		{name: "month 0", payload: `{"year":2025,"month":0,"temperature_c":4.2}`, wantErr: true},
		{name: "month 13", payload: `{"year":2025,"month":13,"temperature_c":4.2}`, wantErr: true},
		{name: "missing year", payload: `{"month":3,"temperature_c":4.2}`, wantErr: true},
		{name: "missing temperature", payload: `{"year":2025,"month":3}`, wantErr: true},
		{name: "not json", payload: `hello`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := ParseObservation([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseObservation() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && obs.TemperatureC == nil {
				t.Error("TemperatureC is nil for valid observation")
			}
		})
	}
}

func TestNewSubscriber_RequiresBroker(t *testing.T) {
	if _, err := NewSubscriber(config.Config{MQTTTopic: "t"}, nil); err == nil {
		t.Fatal("NewSubscriber without broker: err = nil")
	}
}

func TestHandleMessage(t *testing.T) {
	s, err := NewSubscriber(config.Config{MQTTBroker: "localhost", MQTTPort: 1883, MQTTTopic: "climate/nepal/monthly"}, slog.Default())
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}

	var got []types.MonthlyObservation
	s.SetMessageHandler(func(_ context.Context, obs types.MonthlyObservation) error {
		got = append(got, obs)
		return nil
	})

	s.handleMessage("climate/nepal/monthly", []byte(`{"year":2025,"month":2,"temperature_c":7.5}`))
	s.handleMessage("climate/nepal/monthly", []byte(`{"year":2025,"month":14,"temperature_c":7.5}`))

	if len(got) != 1 {
		t.Fatalf("handler called %d times; want 1", len(got))
	}
	if got[0].Record() != (types.MonthlyRecord{Year: 2025, Month: 2, TemperatureC: 7.5}) {
		t.Errorf("record = %+v", got[0].Record())
	}
}

func TestConnectAfterDisconnect(t *testing.T) {
	s, err := NewSubscriber(config.Config{MQTTBroker: "localhost", MQTTPort: 1883, MQTTTopic: "t"}, slog.Default())
	if err != nil {
		t.Fatalf("NewSubscriber: %v", err)
	}
	s.Disconnect()
	s.Disconnect()
	if err := s.Connect(context.Background()); !errors.Is(err, ErrStopped) {
		t.Fatalf("Connect() after Disconnect err = %v; want ErrStopped", err)
	}
}
