package event

import (
	"time"
)

// SystemActor is recorded as created_by/modified_by when the caller does not
// supply an actor identity. The v2 write path never accepts one.
const SystemActor = "sys"

// Data is an arbitrary JSON object attached to an event. Values are whatever
// encoding/json produces: strings, numbers, bools, nil, nested objects and
// arrays. The top level is always an object, never a scalar or array.
type Data map[string]interface{}

// Event is the durable representation of one audit event.
type Event struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	ModifiedAt time.Time `json:"modified_at"`
	ModifiedBy string    `json:"modified_by"`
	EventType  string    `json:"event_type"`
	Data       Data      `json:"event_data"`
}

// CreateRequest is the v2 write payload.
type CreateRequest struct {
	EventType string `json:"event_type"`
	EventData Data   `json:"event_data"`
}

// Response is the v2 read shape: a direct copy of the stored record with
// event_data passed through verbatim.
type Response struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	CreatedBy  string    `json:"created_by"`
	ModifiedAt time.Time `json:"modified_at"`
	ModifiedBy string    `json:"modified_by"`
	EventType  string    `json:"event_type"`
	EventData  Data      `json:"event_data"`
}

// CreateRequestV1 is the deprecated v1 write payload. Target distinguishes
// "absent" from "empty", so it is a pointer. Unrecognized payload keys are
// ignored, matching the historical behavior of the v1 schema.
type CreateRequestV1 struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Source      string  `json:"source"`
	Target      *string `json:"target,omitempty"`
}

// ResponseV1 is the deprecated v1 read shape. Description is always present
// and always a string; Target is omitted entirely when the stored event_data
// has no non-null target.
type ResponseV1 struct {
	ID          string      `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	CreatedBy   string      `json:"created_by"`
	ModifiedAt  time.Time   `json:"modified_at"`
	ModifiedBy  string      `json:"modified_by"`
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Target      interface{} `json:"target,omitempty"`
}

// SeedEvent is one row of the development-only bulk seed payload. Identifier
// and audit fields may be preset; anything left zero is generated on insert.
type SeedEvent struct {
	ID         string     `json:"id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	CreatedBy  string     `json:"created_by,omitempty"`
	ModifiedAt *time.Time `json:"modified_at,omitempty"`
	ModifiedBy string     `json:"modified_by,omitempty"`
	EventType  string     `json:"event_type"`
	EventData  Data       `json:"event_data"`
}
