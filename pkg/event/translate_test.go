package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromV2(t *testing.T) {
	e, err := NewFromV2(CreateRequest{
		EventType: "Login Success",
		EventData: Data{"clinician_id": "c1", "reason": "ok"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Login Success", e.EventType)
	assert.Equal(t, Data{"clinician_id": "c1", "reason": "ok"}, e.Data)
	assert.Equal(t, SystemActor, e.CreatedBy)
	assert.Equal(t, SystemActor, e.ModifiedBy)
}

func TestNewFromV2_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"missing event_type", CreateRequest{EventData: Data{"k": "v"}}},
		{"missing event_data", CreateRequest{EventType: "Login Success"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromV2(tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestNewFromV2_EmptyObjectIsValid(t *testing.T) {
	e, err := NewFromV2(CreateRequest{EventType: "t", EventData: Data{}})
	require.NoError(t, err)
	assert.Equal(t, Data{}, e.Data)
}

func TestNewFromV1(t *testing.T) {
	target := "t1"
	e, err := NewFromV1(CreateRequestV1{
		Type:        "Login Success",
		Description: "d",
		Source:      "s1",
		Target:      &target,
	})
	require.NoError(t, err)

	assert.Equal(t, "Login Success", e.EventType)
	assert.Equal(t, "s1", e.CreatedBy)
	assert.Equal(t, "s1", e.ModifiedBy)
	assert.Equal(t, Data{"description": "d", "source": "s1", "target": "t1"}, e.Data)
}

func TestNewFromV1_TargetOmittedWhenAbsent(t *testing.T) {
	e, err := NewFromV1(CreateRequestV1{Type: "t", Description: "d", Source: "s"})
	require.NoError(t, err)

	_, present := e.Data["target"]
	assert.False(t, present)
}

func TestNewFromV1_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  CreateRequestV1
	}{
		{"missing type", CreateRequestV1{Description: "d", Source: "s"}},
		{"missing description", CreateRequestV1{Type: "t", Source: "s"}},
		{"missing source", CreateRequestV1{Type: "t", Description: "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFromV1(tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestV1RoundTrip(t *testing.T) {
	// Everything except id/timestamps must survive FromV1Request then
	// ToV1Response with no loss.
	target := "t1"
	e, err := NewFromV1(CreateRequestV1{
		Type:        "Login Failure",
		Description: "Authentication failed",
		Source:      "s1",
		Target:      &target,
	})
	require.NoError(t, err)

	resp := e.ToV1Response()
	assert.Equal(t, "Login Failure", resp.Type)
	assert.Equal(t, "Authentication failed", resp.Description)
	assert.Equal(t, "t1", resp.Target)
	assert.Equal(t, "s1", resp.CreatedBy)
	assert.Equal(t, "s1", resp.ModifiedBy)
}

func TestV2RoundTrip(t *testing.T) {
	data := Data{
		"patient_uuid":   "p1",
		"clinician_uuid": "c1",
		"nested":         map[string]interface{}{"reason": "ok"},
	}
	e, err := NewFromV2(CreateRequest{EventType: "Login Success", EventData: data})
	require.NoError(t, err)

	resp := e.ToResponse()
	assert.Equal(t, "Login Success", resp.EventType)
	assert.Equal(t, data, resp.EventData)
}

func TestToV1Response_DescriptionFallback(t *testing.T) {
	// Records created through v2 have no description; the whole payload is
	// serialized so the field stays a string.
	e := &Event{
		EventType: "Login Success",
		Data:      Data{"clinician_id": "c1"},
	}

	resp := e.ToV1Response()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Description), &decoded))
	assert.Equal(t, map[string]interface{}{"clinician_id": "c1"}, decoded)
}

func TestToV1Response_NonStringDescriptionFallsBack(t *testing.T) {
	e := &Event{
		EventType: "t",
		Data:      Data{"description": map[string]interface{}{"k": "v"}},
	}

	resp := e.ToV1Response()
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Description), &decoded))
	assert.Contains(t, decoded, "description")
}

func TestToV1Response_TargetHandling(t *testing.T) {
	tests := []struct {
		name   string
		data   Data
		target interface{}
	}{
		{"present", Data{"description": "d", "target": "t1"}, "t1"},
		{"absent", Data{"description": "d"}, nil},
		{"explicit null", Data{"description": "d", "target": nil}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Event{EventType: "t", Data: tt.data}
			resp := e.ToV1Response()
			assert.Equal(t, tt.target, resp.Target)

			// The serialized form must omit the key entirely, not emit null.
			raw, err := json.Marshal(resp)
			require.NoError(t, err)
			var m map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &m))
			_, present := m["target"]
			assert.Equal(t, tt.target != nil, present)
		})
	}
}
