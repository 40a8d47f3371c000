package softblit

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestDefaultInitOptions(t *testing.T) {
	o := defaultInitOptions()
	if o.driver != "" || o.logger != nil {
		t.Errorf("defaultInitOptions() = %+v, want zero", o)
	}
}

func TestInitOptions(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	o := defaultInitOptions()
	for _, opt := range []InitOption{WithDriver("dummy"), WithDeviceLogger(l)} {
		opt(&o)
	}
	if o.driver != "dummy" || o.logger != l {
		t.Errorf("options = %+v", o)
	}
}

func TestWithDeviceLogger(t *testing.T) {
	t.Setenv(DriverEnv, "")
	t.Cleanup(VideoQuit)

	dev := &fakeDevice{}
	registerFake(t, "logged", 1, dev, true)

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	if err := VideoInit(WithDriver("logged"), WithDeviceLogger(l)); err != nil {
		t.Fatal(err)
	}
	if dev.logger != l {
		t.Error("device did not receive the WithDeviceLogger logger")
	}
	if Logger() == l {
		t.Error("WithDeviceLogger replaced the package logger")
	}
}
