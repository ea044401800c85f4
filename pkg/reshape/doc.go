// Package reshape implements offline bulk transformations of historical
// event_data payloads: the upgrade that extracts structured fields from the
// free-text descriptions produced by the pre-JSON era, the identifier
// renames that followed it, and their lossy downgrades.
//
// # Idempotence
//
// There is no schema-version column, so "has this row already been
// transformed" is decided structurally: a row whose event_data carries no
// description key is already in the target shape, and a description that
// itself parses as a JSON object is an earlier downgrade to unwrap. Running
// an upgrade twice therefore produces the same result as running it once.
//
// # Pass-through
//
// Unknown event types and descriptions matching no known template are left
// unchanged rather than failing: for audit data, not losing history beats
// fully normalizing it. Every passed-through row is logged for forensic
// review.
//
// # Downgrade asymmetry
//
// Downgrade wraps the whole event_data object into {"description": "<json>"}.
// It is a lossy best-effort reconstruction of the old shape, NOT an exact
// inverse: downgrade(upgrade(x)) does not generally equal x. Only the
// identifier renames (clinician_uuid <-> clinician_id and friends) invert
// exactly.
package reshape
