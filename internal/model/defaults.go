package model

import "time"

// Shared defaults used by both the dashboard and the stub service.
const (
	DefaultEndpoint       = "http://127.0.0.1:5000"
	DefaultPollInterval   = 5 * time.Second
	DefaultRequestTimeout = 10 * time.Second
	DefaultSource         = "storage"
	DefaultTake           = 8
)
