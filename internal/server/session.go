package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/exposure-meter-mcp/internal/logging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
)

// session is one metering stream. Its mutex serializes ticks and config
// changes so the engine only ever sees one writer.
type session struct {
	id      string
	created time.Time

	mu     sync.Mutex
	path   string
	engine *meter.Engine
	cfg    meter.ExposureConfig
	cal    meter.CalibrationProfile
	ticks  int

	// last is the most recent metered result, kept so hosts can keep
	// showing it through out-of-range ticks.
	last *meter.TickResult
}

func (s *Server) newSession(path string, cfg meter.ExposureConfig, cal meter.CalibrationProfile) *session {
	id := uuid.NewString()
	sess := &session{
		id:      id,
		created: time.Now(),
		path:    path,
		cfg:     cfg,
		cal:     cal,
		engine: meter.New(meter.Options{
			Logger:   s.logger.With(logging.String(logging.FieldSession, id)),
			Observer: s.observer,
			Strict:   s.strict,
		}),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.logger.Info("session created", logging.String(logging.FieldSession, id))
	return sess
}

func (s *Server) session(id string) (*session, error) {
	if id == "" {
		return nil, fmt.Errorf("session_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session: %s", id)
	}
	return sess, nil
}

func (s *Server) closeSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("unknown session: %s", id)
	}
	delete(s.sessions, id)
	s.logger.Info("session closed", logging.String(logging.FieldSession, id))
	return nil
}

// SessionCount returns the number of open sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
