package shared

// Asynq task types.
const (
	TypeIndexResync    = "publication:index_resync"
	TypeIndexReconcile = "publication:index_reconcile"
)

// Asynq queue names.
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// IndexResyncPayload asks the worker to re-push one module's search
// projection after a failed index write.
type IndexResyncPayload struct {
	ModuleID int64 `json:"moduleId"`
}

// IndexReconcilePayload drives the scheduled sweep over recently
// published modules.
type IndexReconcilePayload struct {
	WindowHours int `json:"windowHours"`
	Limit       int `json:"limit"`
}
