package model

import "context"

// Predictor performs one predict round trip.
type Predictor interface {
	Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error)
}

// StatusChecker reports whether the service is up and has a model loaded.
type StatusChecker interface {
	Status(ctx context.Context) (ServiceStatus, error)
}

// PredictAPI is the full client contract used by the dashboard.
type PredictAPI interface {
	Predictor
	StatusChecker
}

// SnapshotRecorder persists committed responses.
type SnapshotRecorder interface {
	RecordSnapshot(ctx context.Context, s Snapshot) error
}

// SnapshotReader lists recorded snapshots, newest first.
type SnapshotReader interface {
	RecentSnapshots(ctx context.Context, limit int) ([]Snapshot, error)
}

// SnapshotStore is the read/write history contract.
type SnapshotStore interface {
	SnapshotRecorder
	SnapshotReader
}
