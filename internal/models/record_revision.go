package models

// RecordRevision is one immutable entry in a daily record's edit history:
// who changed it, when, and a JSON snapshot of the changed fields. Revisions
// are append-only and never updated or deleted.
type RecordRevision struct {
	Base
	RecordID uint   `gorm:"not null;index" json:"record_id"`
	EditorID uint   `gorm:"not null" json:"editor_id"`
	Changes  string `gorm:"not null" json:"changes"`
}
