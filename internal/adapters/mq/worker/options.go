package worker

import "github.com/okian/sideout/pkg/logger"

// Option applies a configuration option to the SaveWorker.
type Option func(*SaveWorker)

// WithName sets the worker's name for logging.
func WithName(name string) Option {
	return func(w *SaveWorker) {
		if name != "" {
			w.name = name
			w.logger = logger.Get().Named(name)
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *SaveWorker) {
		if l != nil {
			w.logger = l
		}
	}
}
