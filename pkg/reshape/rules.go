package reshape

import (
	"regexp"
	"strings"

	"github.com/platinummonkey/chronicle/pkg/event"
)

// ruleFunc rewrites event_data for one event type. It returns the new
// payload and whether any known description template matched.
type ruleFunc func(desc string, data event.Data) (event.Data, bool)

// rules maps event types onto their description-extraction rule. Event
// types absent from this table pass through untouched.
var rules = map[string]ruleFunc{
	"SEND entry login failure":          sendEntryLoginFailure,
	"SEND entry login success":          sendEntryLoginSuccess,
	"SEND entry device update":          sendEntryDeviceUpdate,
	"duplicate_reading":                 duplicateReading,
	"Login Failure":                     loginFailure,
	"Login Success":                     promoteTarget("clinician_uuid"),
	"login activated":                   promoteTargetAndSource,
	"login deactivated":                 promoteTargetAndSource,
	"GDM Patient diabetes type changed": diabetesTypeChanged,
	"Patient information viewed":        patientInformation,
	"Patient information archived":      patientInformation,
	"Patient information updated":       patientInformation,
	"spo2_scale_change_failure":         spo2ScaleChangeFailure,
	"score_system_changed":              scoreSystemChanged,
}

var (
	reSendEntryIdentifier = regexp.MustCompile(`Failed login attempt using identifier '(.+?)'(, clinician (.+?) \(clinician contract expired\))?$`)
	reUnactivatedDevice   = regexp.MustCompile(`Attempt made to get a JWT for a device that hasn't been activated: (.+?)'$`)
	reDeviceIdentifier    = regexp.MustCompile(`Failed login attempt using device identifier '(.+?)'$`)

	reLoginSuccessIdentifier = regexp.MustCompile(`Successful login using identifier '(.+?)', clinician (.+?)$`)

	reDeviceUpdate = regexp.MustCompile(`device (.+?) updated by (.+?). updated fields: (.+)$`)

	reInvalidUsername = regexp.MustCompile(`Authentication failed, invalid username '(.+?)'$`)
	reContractExpiry  = regexp.MustCompile(`Authentication prevented for '(.+?)'\. Login expired, contract_expiry_eod_date '(.+?)'$`)

	reDiabetesTypeChanged = regexp.MustCompile(`Patient '(.+?)' diabetes type changed from (.+?) to (.+?) by clinician '(.+?)'$`)

	reSpo2ScaleChange = regexp.MustCompile(`encounter '(.+?)' spo2 scale change not permitted for user (.+)$`)
	reScoreSystem     = regexp.MustCompile(`encounter '(.+?)' Score system changed from (.+?) (.+?) to (.+?) (.+?) by (.+?) at (.+)$`)
)

func sendEntryLoginFailure(desc string, data event.Data) (event.Data, bool) {
	if m := reSendEntryIdentifier.FindStringSubmatch(desc); m != nil {
		out := event.Data{"send_entry_identifier": m[1]}
		if m[3] != "" {
			out["clinician_uuid"] = m[3]
		}
		return out, true
	}
	if m := reUnactivatedDevice.FindStringSubmatch(desc); m != nil {
		return event.Data{"device_uuid": m[1]}, true
	}
	if m := reDeviceIdentifier.FindStringSubmatch(desc); m != nil {
		return event.Data{"device_uuid": m[1]}, true
	}
	return data, false
}

func sendEntryLoginSuccess(desc string, data event.Data) (event.Data, bool) {
	if strings.Contains(desc, "Successful login using device identifier") {
		return event.Data{"device_uuid": data["target"]}, true
	}
	if m := reLoginSuccessIdentifier.FindStringSubmatch(desc); m != nil {
		return event.Data{
			"clinician_uuid":        data["target"],
			"send_entry_identifier": m[1],
		}, true
	}
	return data, false
}

func sendEntryDeviceUpdate(desc string, data event.Data) (event.Data, bool) {
	m := reDeviceUpdate.FindStringSubmatch(desc)
	if m == nil {
		return data, false
	}
	return event.Data{
		"device_uuid":    data["target"],
		"clinician_uuid": m[2],
		"updated_fields": m[3],
	}, true
}

// duplicateReading never inspects the description text: the structured
// fields were always carried in source/target.
func duplicateReading(desc string, data event.Data) (event.Data, bool) {
	return event.Data{
		"patient_uuid":           data["source"],
		"duplicate_reading_uuid": data["target"],
	}, true
}

func loginFailure(desc string, data event.Data) (event.Data, bool) {
	if m := reInvalidUsername.FindStringSubmatch(desc); m != nil {
		return event.Data{"username": m[1]}, true
	}
	if strings.Contains(desc, "account is disabled") {
		return event.Data{"clinician_uuid": data["target"]}, true
	}
	if m := reContractExpiry.FindStringSubmatch(desc); m != nil {
		return event.Data{
			"clinician_uuid":           data["target"],
			"contract_expiry_eod_date": m[2],
		}, true
	}
	if strings.Contains(desc, "Authentication failed invalid password for") {
		return event.Data{"clinician_uuid": data["target"]}, true
	}
	return data, false
}

func diabetesTypeChanged(desc string, data event.Data) (event.Data, bool) {
	m := reDiabetesTypeChanged.FindStringSubmatch(desc)
	if m == nil {
		return data, false
	}
	return event.Data{
		"patient_uuid":   data["target"],
		"clinician_uuid": data["source"],
		"old_type":       m[2],
		"new_type":       m[3],
	}, true
}

func patientInformation(desc string, data event.Data) (event.Data, bool) {
	return event.Data{
		"patient_uuid":   data["target"],
		"clinician_uuid": data["source"],
	}, true
}

// promoteTarget maps the legacy target field onto a single named key.
func promoteTarget(key string) ruleFunc {
	return func(desc string, data event.Data) (event.Data, bool) {
		return event.Data{key: data["target"]}, true
	}
}

func promoteTargetAndSource(desc string, data event.Data) (event.Data, bool) {
	return event.Data{
		"clinician_uuid": data["target"],
		"modified_by":    data["source"],
	}, true
}

func spo2ScaleChangeFailure(desc string, data event.Data) (event.Data, bool) {
	m := reSpo2ScaleChange.FindStringSubmatch(desc)
	if m == nil {
		return data, false
	}
	return event.Data{
		"encounter_uuid":   data["target"],
		"epr_encounter_id": m[1],
		"clinician_uuid":   m[2],
	}, true
}

func scoreSystemChanged(desc string, data event.Data) (event.Data, bool) {
	m := reScoreSystem.FindStringSubmatch(desc)
	if m == nil {
		return data, false
	}
	return event.Data{
		"encounter_uuid":        data["target"],
		"epr_encounter_id":      m[1],
		"previous_score_system": m[2],
		"previous_spo2_scale":   m[3],
		"new_score_system":      m[4],
		"new_spo2_scale":        m[5],
		"clinician_uuid":        m[6],
		"modified":              m[7],
	}, true
}
