package remote

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/nats-io/nats.go"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
)

var errStubFailing = errors.New("remote stub is in failing mode")

// Stub is an in-memory remote service for development and tests.
//
// It applies each idempotency key at most once and reports repeats as
// duplicates. In failing mode every delivery and health check is rejected,
// which simulates an unreachable remote.
type Stub struct {
	logger *slog.Logger

	mu       sync.Mutex
	failing  bool
	seen     map[string]bool
	applied  []model.Mutation
	received int
}

// NewStub creates an empty stub.
func NewStub(logger *slog.Logger) *Stub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stub{logger: logger, seen: make(map[string]bool)}
}

// SetFailing switches failing mode on or off.
func (s *Stub) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Applied returns the distinct mutations applied so far, in arrival order.
func (s *Stub) Applied() []model.Mutation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Mutation, len(s.applied))
	copy(out, s.applied)
	return out
}

// Received returns how many deliveries arrived, duplicates and rejections
// included.
func (s *Stub) Received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}

func (s *Stub) apply(m model.Mutation) (Ack, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received++
	if s.failing {
		return Ack{}, errStubFailing
	}
	if m.IdempotencyKey == "" || !m.Collection.Valid() || !m.Operation.Valid() {
		return Ack{}, errors.New("mutation needs idempotency_key, collection and operation")
	}

	ack := Ack{IdempotencyKey: m.IdempotencyKey}
	if s.seen[m.IdempotencyKey] {
		ack.Duplicate = true
		return ack, nil
	}
	s.seen[m.IdempotencyKey] = true
	s.applied = append(s.applied, m)
	s.logger.Info("mutation applied",
		"collection", m.Collection,
		"operation", m.Operation,
		"idempotency_key", m.IdempotencyKey)
	return ack, nil
}

// Handler returns the HTTP surface: POST /v1/mutations and GET /healthz.
func (s *Stub) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get(HealthPath, s.health)
	router.With(middleware.AllowContentType("application/json")).Post(MutationsPath, s.deliver)

	return router
}

func (s *Stub) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	failing := s.failing
	s.mu.Unlock()

	if failing {
		http.Error(w, errStubFailing.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Stub) deliver(w http.ResponseWriter, r *http.Request) {
	var m model.Mutation
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if key := r.Header.Get(IdempotencyHeader); key != "" {
		m.IdempotencyKey = key
	}

	ack, err := s.apply(m)
	switch {
	case errors.Is(err, errStubFailing):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if ack.Duplicate {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusCreated)
	}
	if err := json.NewEncoder(w).Encode(ack); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// ServeNATS answers delivery requests on "<subject>.>" over nc.
func (s *Stub) ServeNATS(nc *nats.Conn, subject string) (*nats.Subscription, error) {
	return nc.Subscribe(subject+".>", func(msg *nats.Msg) {
		if err := msg.Respond(s.natsReply(msg.Data)); err != nil {
			s.logger.Error("failed to respond", "subject", msg.Subject, "error", err)
		}
	})
}

func (s *Stub) natsReply(data []byte) []byte {
	var m model.Mutation
	ack := Ack{}
	if err := json.Unmarshal(data, &m); err != nil {
		ack.Error = err.Error()
	} else if ack, err = s.apply(m); err != nil {
		ack.Error = err.Error()
	}
	reply, _ := json.Marshal(ack)
	return reply
}
