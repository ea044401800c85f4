package event

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Service orchestrates create/read/list for both API generations over a
// single Store. The two generations differ only in request/response shape;
// filtering and persistence are shared.
type Service struct {
	store Store
	log   *logrus.Entry
}

// NewService creates an event service.
func NewService(store Store, log *logrus.Entry) *Service {
	return &Service{store: store, log: log}
}

// Get fetches one event in the v2 shape.
func (s *Service) Get(ctx context.Context, id string) (Response, error) {
	s.log.WithField("event_id", id).Debug("getting event")

	e, err := s.store.Get(ctx, id)
	if err != nil {
		return Response{}, err
	}
	return e.ToResponse(), nil
}

// GetV1 fetches one event in the deprecated v1 shape.
func (s *Service) GetV1(ctx context.Context, id string) (ResponseV1, error) {
	s.log.WithField("event_id", id).Debug("getting event (v1)")

	e, err := s.store.Get(ctx, id)
	if err != nil {
		return ResponseV1{}, err
	}
	return e.ToV1Response(), nil
}

// List returns every matching event in the v2 shape. There is no
// pagination: audit volumes are queried in bounded date windows by
// operational convention.
func (s *Service) List(ctx context.Context, f Filter) ([]Response, error) {
	s.log.WithFields(logrus.Fields{
		"creator":    f.Creator,
		"event_type": f.EventType,
	}).Debug("listing events")

	events, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	resp := make([]Response, 0, len(events))
	for _, e := range events {
		resp = append(resp, e.ToResponse())
	}
	return resp, nil
}

// ListV1 returns every matching event in the deprecated v1 shape.
func (s *Service) ListV1(ctx context.Context, f Filter) ([]ResponseV1, error) {
	s.log.WithFields(logrus.Fields{
		"creator":    f.Creator,
		"event_type": f.EventType,
	}).Debug("listing events (v1)")

	events, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}

	resp := make([]ResponseV1, 0, len(events))
	for _, e := range events {
		resp = append(resp, e.ToV1Response())
	}
	return resp, nil
}

// Create validates a v2 payload and persists exactly one new record.
// Duplicate submissions create duplicate records; there is no idempotency
// key.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Event, error) {
	e, err := NewFromV2(req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, e); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"event_id":   e.ID,
		"event_type": e.EventType,
	}).Debug("created event")
	return e, nil
}

// CreateV1 validates a deprecated v1 payload and persists exactly one new
// record, nesting the flat fields into event_data.
func (s *Service) CreateV1(ctx context.Context, req CreateRequestV1) (*Event, error) {
	e, err := NewFromV1(req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, e); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"event_id":   e.ID,
		"event_type": e.EventType,
	}).Debug("created event (v1)")
	return e, nil
}

// Reset drops all event data. Development environments only.
func (s *Service) Reset(ctx context.Context) error {
	s.log.Warn("truncating events table")
	return s.store.Truncate(ctx)
}

// Seed bulk-inserts events, honoring any preset identifiers and timestamps.
// Development environments only.
func (s *Service) Seed(ctx context.Context, rows []SeedEvent) error {
	for _, row := range rows {
		e := &Event{
			ID:         row.ID,
			CreatedBy:  row.CreatedBy,
			ModifiedBy: row.ModifiedBy,
			EventType:  row.EventType,
			Data:       row.EventData,
		}
		if row.CreatedAt != nil {
			e.CreatedAt = *row.CreatedAt
		}
		if row.ModifiedAt != nil {
			e.ModifiedAt = *row.ModifiedAt
		}
		if e.EventType == "" {
			return &ValidationError{Field: "event_type", Reason: "required"}
		}
		if e.Data == nil {
			return &ValidationError{Field: "event_data", Reason: "required"}
		}
		if err := s.store.Insert(ctx, e); err != nil {
			return err
		}
	}

	s.log.WithField("count", len(rows)).Info("seeded events")
	return nil
}
