package event

import (
	"encoding/json"
)

// NewFromV2 validates a v2 create payload and builds the fields of a new
// record. The v2 write path does not accept a caller-supplied actor, so
// created_by/modified_by default to the system actor.
func NewFromV2(req CreateRequest) (*Event, error) {
	if req.EventType == "" {
		return nil, &ValidationError{Field: "event_type", Reason: "required"}
	}
	if req.EventData == nil {
		return nil, &ValidationError{Field: "event_data", Reason: "required"}
	}
	return &Event{
		EventType:  req.EventType,
		Data:       req.EventData,
		CreatedBy:  SystemActor,
		ModifiedBy: SystemActor,
	}, nil
}

// NewFromV1 validates a deprecated v1 create payload and builds the fields
// of a new record. The flat v1 fields nest into event_data exactly as given;
// target is only included when supplied.
func NewFromV1(req CreateRequestV1) (*Event, error) {
	if req.Type == "" {
		return nil, &ValidationError{Field: "type", Reason: "required"}
	}
	if req.Description == "" {
		return nil, &ValidationError{Field: "description", Reason: "required"}
	}
	if req.Source == "" {
		return nil, &ValidationError{Field: "source", Reason: "required"}
	}

	data := Data{
		"description": req.Description,
		"source":      req.Source,
	}
	if req.Target != nil {
		data["target"] = *req.Target
	}

	return &Event{
		EventType:  req.Type,
		Data:       data,
		CreatedBy:  req.Source,
		ModifiedBy: req.Source,
	}, nil
}

// ToResponse shapes the record for the v2 surface: a field-for-field copy.
func (e *Event) ToResponse() Response {
	return Response{
		ID:         e.ID,
		CreatedAt:  e.CreatedAt,
		CreatedBy:  e.CreatedBy,
		ModifiedAt: e.ModifiedAt,
		ModifiedBy: e.ModifiedBy,
		EventType:  e.EventType,
		EventData:  e.Data,
	}
}

// ToV1Response shapes the record for the deprecated v1 surface.
//
// Description is event_data.description when it is a string; otherwise the
// whole event_data object is JSON-serialized so the field is always present
// and always a string. Callers expecting human prose must tolerate raw JSON
// for records created through v2.
func (e *Event) ToV1Response() ResponseV1 {
	resp := ResponseV1{
		ID:         e.ID,
		CreatedAt:  e.CreatedAt,
		CreatedBy:  e.CreatedBy,
		ModifiedAt: e.ModifiedAt,
		ModifiedBy: e.ModifiedBy,
		Type:       e.EventType,
	}

	if desc, ok := e.Data["description"].(string); ok {
		resp.Description = desc
	} else {
		raw, err := json.Marshal(e.Data)
		if err != nil {
			// Data came out of a JSONB column, so this cannot happen in
			// practice; an empty object keeps the field a string regardless.
			raw = []byte("{}")
		}
		resp.Description = string(raw)
	}

	if target, ok := e.Data["target"]; ok && target != nil {
		resp.Target = target
	}

	return resp
}
