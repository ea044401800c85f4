// Package event implements the audit-event record store: the persisted
// Event record, the v1/v2 schema translation layer, filtered queries, and
// the service orchestrating create/read/list for both API generations.
//
// # Overview
//
// A single PostgreSQL representation (event_type plus a free-form JSONB
// event_data object) backs two API contracts. The v2 surface exposes the
// stored shape directly. The v1 surface is a deprecated, narrower view with
// fixed fields (type/description/source/target) that is derived from, and
// folded back into, event_data on the way in and out.
//
// # Usage Example
//
// Create and fetch through the service:
//
//	svc := event.NewService(store, log)
//	created, err := svc.Create(ctx, event.CreateRequest{
//		EventType: "Login Success",
//		EventData: event.Data{"clinician_id": "c1"},
//	})
//	resp, err := svc.Get(ctx, created.ID)
//
// List with filters:
//
//	filter, err := event.ParseFilter(creator, eventType, "2020-06-01", "2020-06-30")
//	events, err := svc.List(ctx, filter)
//
// # Related Packages
//
//   - pkg/reshape: offline event_data migrations
//   - pkg/middleware: bearer-token scope checks on the HTTP surface
package event
