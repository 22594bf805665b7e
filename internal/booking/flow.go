// Package booking drives the patient booking flow: pick a slot, pay through
// the Stripe widget, land on confirmation. The flow is a small state machine
// held server-side per session; the appointment and payment intent themselves
// live in the Sphere API.
package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ubietysphere/sphere-web/pkg/logging"
)

// State is the booking flow's current step.
type State string

const (
	StateSelect  State = "select"
	StatePayment State = "payment"
	StateSuccess State = "success"
)

// Flow is one session's booking in progress. AppointmentID outliving a "back"
// to slot selection is deliberate: the unpaid appointment is reused on the
// next attempt instead of creating a duplicate.
type Flow struct {
	State State `json:"state"`

	DoctorID     string `json:"doctorId,omitempty"`
	ServiceSlug  string `json:"serviceSlug,omitempty"`
	SlotID       string `json:"slotId,omitempty"`
	SlotDate     string `json:"slotDate,omitempty"`
	SlotStart    string `json:"slotStart,omitempty"`
	SlotEnd      string `json:"slotEnd,omitempty"`
	ContactName  string `json:"contactName,omitempty"`
	ContactEmail string `json:"contactEmail,omitempty"`
	PatientNotes string `json:"patientNotes,omitempty"`

	AppointmentID string  `json:"appointmentId,omitempty"`
	ClientSecret  string  `json:"clientSecret,omitempty"`
	Price         float64 `json:"price,omitempty"`
	Currency      string  `json:"currency,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`
}

const flowKeyPrefix = "bookingflow:"

// FlowStore persists flows in Redis, keyed by session id.
type FlowStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewFlowStore constructs a flow store. ttl is how long an abandoned flow
// survives before Redis drops it.
func NewFlowStore(rdb *redis.Client, ttl time.Duration, logger *logging.Logger) *FlowStore {
	if rdb == nil {
		panic("booking: redis client required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &FlowStore{rdb: rdb, ttl: ttl, logger: logger}
}

// Load returns the session's flow, or a fresh one at the select step.
func (s *FlowStore) Load(ctx context.Context, sessionID string) (*Flow, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("booking: session id required")
	}
	raw, err := s.rdb.Get(ctx, flowKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Flow{State: StateSelect}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("booking: load flow: %w", err)
	}
	var f Flow
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("booking: unmarshal flow: %w", err)
	}
	return &f, nil
}

// Save persists the flow and refreshes its TTL.
func (s *FlowStore) Save(ctx context.Context, sessionID string, f *Flow) error {
	f.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("booking: marshal flow: %w", err)
	}
	if err := s.rdb.Set(ctx, flowKeyPrefix+sessionID, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("booking: save flow: %w", err)
	}
	return nil
}

// Clear drops the session's flow.
func (s *FlowStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, flowKeyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("booking: clear flow: %w", err)
	}
	return nil
}
