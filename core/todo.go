package core

import "time"

// Priority levels accepted for a todo item
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Todo represents a record in the todos collection. Field names follow
// the backend collection schema so records serialize the same way on
// both sides.
type Todo struct {
	ID          string    `json:"id"`          // Backend record ID
	OwnerID     string    `json:"owner"`       // Record ID of the owning user
	Title       string    `json:"title"`       // Short description, required
	Description string    `json:"description"` // Longer free text, optional
	Priority    string    `json:"priority"`    // One of the Priority constants
	Completed   bool      `json:"completed"`   // Whether the item is done
	Created     time.Time `json:"created"`     // When the record was created
	Updated     time.Time `json:"updated"`     // When the record was last updated
}
