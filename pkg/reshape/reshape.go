package reshape

import (
	"encoding/json"

	"github.com/platinummonkey/chronicle/pkg/event"
)

// Outcome classifies what Upgrade did with one row.
type Outcome int

const (
	// OutcomeSkipped: already structured, nothing to do.
	OutcomeSkipped Outcome = iota
	// OutcomeUnwrapped: description was itself a JSON object from an
	// earlier downgrade and was restored verbatim.
	OutcomeUnwrapped
	// OutcomeRewritten: a known description template matched and
	// structured fields were extracted.
	OutcomeRewritten
	// OutcomePassthrough: a free-text description with no matching rule
	// or template; left unchanged deliberately.
	OutcomePassthrough
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeUnwrapped:
		return "unwrapped"
	case OutcomeRewritten:
		return "rewritten"
	case OutcomePassthrough:
		return "passthrough"
	}
	return "unknown"
}

// Upgrade reshapes one legacy event_data payload into the structured form.
// The already-migrated check is structural (see the package comment), which
// makes Upgrade idempotent: feeding its output back in yields OutcomeSkipped.
func Upgrade(eventType string, data event.Data) (event.Data, Outcome) {
	desc, ok := data["description"].(string)
	if !ok {
		return data, OutcomeSkipped
	}

	// A description that parses as a JSON object is a previously
	// downgraded payload; restore it instead of pattern matching.
	if unwrapped, ok := parseJSONObject(desc); ok {
		return unwrapped, OutcomeUnwrapped
	}

	rule, ok := rules[eventType]
	if !ok {
		return data, OutcomePassthrough
	}

	out, matched := rule(desc, data)
	if !matched {
		return data, OutcomePassthrough
	}
	return out, OutcomeRewritten
}

// Downgrade folds a structured payload back into the legacy single-field
// shape: {"description": "<serialized json>"}. Lossy best-effort only; see
// the package comment.
func Downgrade(data event.Data) event.Data {
	raw, err := json.Marshal(data)
	if err != nil {
		// event.Data round-trips through JSONB, so this cannot happen in
		// practice.
		raw = []byte("{}")
	}
	return event.Data{"description": string(raw)}
}

// identifierRenames maps the transient *_uuid keys onto the stable *_id
// names, in promotion direction.
var identifierRenames = map[string]string{
	"clinician_uuid":     "clinician_id",
	"device_uuid":        "device_id",
	"patient_uuid":       "patient_id",
	"encounter_uuid":     "encounter_id",
	"epr_encounter_uuid": "epr_encounter_id",
	"obs_set_uuid":       "obs_set_id",
}

// PromoteIdentifiers renames *_uuid keys to *_id. Returns whether anything
// changed.
func PromoteIdentifiers(data event.Data) (event.Data, bool) {
	return renameKeys(data, identifierRenames)
}

// DemoteIdentifiers is the exact inverse of PromoteIdentifiers.
func DemoteIdentifiers(data event.Data) (event.Data, bool) {
	inverse := make(map[string]string, len(identifierRenames))
	for from, to := range identifierRenames {
		inverse[to] = from
	}
	return renameKeys(data, inverse)
}

func renameKeys(data event.Data, renames map[string]string) (event.Data, bool) {
	changed := false
	out := make(event.Data, len(data))
	for k, v := range data {
		if to, ok := renames[k]; ok {
			out[to] = v
			changed = true
			continue
		}
		out[k] = v
	}
	if !changed {
		return data, false
	}
	return out, true
}

func parseJSONObject(s string) (event.Data, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return event.Data(obj), true
}
