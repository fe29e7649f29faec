package custody

import (
	"time"

	"github.com/google/uuid"

	"github.com/jviciana84/dealerops-backend/pkg/enums"
)

// Kind separates the two movement tables in the unified API surface.
type Kind string

const (
	KindKey      Kind = "key"
	KindDocument Kind = "document"
)

// CreateMovementRequest starts a custody transfer. Exactly one of key_type
// and document_type must be set, matching kind. A nil to_user_id hands the
// item back to the dealership.
type CreateMovementRequest struct {
	Matricula    string     `json:"matricula" validate:"required,plate"`
	Kind         Kind       `json:"kind" validate:"required,oneof=key document"`
	KeyType      string     `json:"key_type,omitempty"`
	DocumentType string     `json:"document_type,omitempty"`
	ToUserID     *uuid.UUID `json:"to_user_id"`
	Reason       string     `json:"reason"`
}

// RejectRequest carries the optional reject note.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// Movement is the unified read model over key and document movements.
type Movement struct {
	ID           uuid.UUID            `json:"id"`
	Kind         Kind                 `json:"kind"`
	VehicleID    uuid.UUID            `json:"vehicle_id"`
	Matricula    string               `json:"matricula,omitempty"`
	ItemType     string               `json:"item_type"`
	FromUserID   *uuid.UUID           `json:"from_user_id"`
	ToUserID     *uuid.UUID           `json:"to_user_id"`
	Reason       string               `json:"reason,omitempty"`
	Status       enums.MovementStatus `json:"status"`
	Deadline     *time.Time           `json:"confirmation_deadline,omitempty"`
	ConfirmedAt  *time.Time           `json:"confirmed_at,omitempty"`
	RejectedAt   *time.Time           `json:"rejected_at,omitempty"`
	Notes        *string              `json:"notes,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	EmailWarning string               `json:"-"`
}

// HistoryParams pages through a vehicle's custody log.
type HistoryParams struct {
	Matricula string
	Limit     int
	Cursor    string
}

// HistoryResult is one page of merged key and document movements.
type HistoryResult struct {
	Movements []Movement `json:"movements"`
	Cursor    string     `json:"cursor"`
}
