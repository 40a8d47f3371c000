package softblit

import "log/slog"

// InitOption configures VideoInit.
//
// Example:
//
//	err := softblit.VideoInit(softblit.WithDriver("dummy"))
type InitOption func(*initOptions)

type initOptions struct {
	driver string
	logger *slog.Logger
}

func defaultInitOptions() initOptions {
	return initOptions{}
}

// WithDriver selects a video driver by name instead of by priority.
func WithDriver(name string) InitOption {
	return func(o *initOptions) {
		o.driver = name
	}
}

// WithDeviceLogger hands l to the device instead of the package logger.
// The package logger is unaffected; a later SetLogger replaces l.
func WithDeviceLogger(l *slog.Logger) InitOption {
	return func(o *initOptions) {
		o.logger = l
	}
}
