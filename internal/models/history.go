package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// History actions. Each action carries its own typed payload; the log itself
// stays a single append-only sequence on the order document.
const (
	ActionOrderCreated  = "order_created"
	ActionStatusChanged = "status_changed"
	ActionOrderEdited   = "order_edited"
	ActionManualLog     = "manual_log"
)

// StatusChange records the endpoints of a status transition.
type StatusChange struct {
	From OrderStatus `bson:"from" json:"from"`
	To   OrderStatus `bson:"to" json:"to"`
}

// Edit records which order fields an administrator edit touched.
type Edit struct {
	ChangedFields []string `bson:"changedFields" json:"changedFields"`
}

// HistoryEntry is one record in an order's append-only audit log. Exactly one
// of the payload pointers is set, matching Action.
type HistoryEntry struct {
	Action       string              `bson:"action" json:"action"`
	Timestamp    time.Time           `bson:"timestamp" json:"timestamp"`
	Actor        *primitive.ObjectID `bson:"actor,omitempty" json:"actor,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`
	StatusChange *StatusChange       `bson:"statusChange,omitempty" json:"statusChange,omitempty"`
	Edit         *Edit               `bson:"edit,omitempty" json:"edit,omitempty"`
}

// NewOrderCreated returns the initial history entry for a fresh order.
func NewOrderCreated(at time.Time, actor *primitive.ObjectID) HistoryEntry {
	return HistoryEntry{
		Action:    ActionOrderCreated,
		Timestamp: at,
		Actor:     actor,
	}
}

// NewStatusChanged returns a history entry for a status transition.
func NewStatusChanged(at time.Time, actor *primitive.ObjectID, from, to OrderStatus) HistoryEntry {
	return HistoryEntry{
		Action:       ActionStatusChanged,
		Timestamp:    at,
		Actor:        actor,
		StatusChange: &StatusChange{From: from, To: to},
	}
}

// NewEdited returns a history entry for an administrator edit listing the
// fields it changed.
func NewEdited(at time.Time, actor *primitive.ObjectID, changed []string, notes string) HistoryEntry {
	return HistoryEntry{
		Action:    ActionOrderEdited,
		Timestamp: at,
		Actor:     actor,
		Notes:     notes,
		Edit:      &Edit{ChangedFields: changed},
	}
}

// NewManualLog returns a free-form history entry for operational notes.
func NewManualLog(at time.Time, actor *primitive.ObjectID, action, notes string) HistoryEntry {
	if action == "" {
		action = ActionManualLog
	}
	return HistoryEntry{
		Action:    action,
		Timestamp: at,
		Actor:     actor,
		Notes:     notes,
	}
}
