package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gtudan/co2monitor/internal/protocol"
)

// DefaultStaleAfter is how old the newest reading may get before /healthz
// reports the monitor as unhealthy. The device normally sends a reading
// every few seconds.
const DefaultStaleAfter = 2 * time.Minute

// CO2Snapshot is the latest CO2 reading.
type CO2Snapshot struct {
	PPM  uint16    `json:"ppm"`
	Time time.Time `json:"time"`
}

// TemperatureSnapshot is the latest temperature reading.
type TemperatureSnapshot struct {
	Celsius json.Number `json:"celsius"`
	Time    time.Time   `json:"time"`
}

// Snapshot is the body of GET /api/latest.
type Snapshot struct {
	CO2         *CO2Snapshot         `json:"co2,omitempty"`
	Temperature *TemperatureSnapshot `json:"temperature,omitempty"`
}

// State remembers the latest reading of each kind. It implements sink.Sink.
type State struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewState creates an empty State.
func NewState() *State {
	return &State{now: time.Now}
}

func (s *State) PublishCO2(ppm uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.CO2 = &CO2Snapshot{PPM: ppm, Time: s.now()}
	return nil
}

func (s *State) PublishTemperature(celsius float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap.Temperature = &TemperatureSnapshot{Celsius: json.Number(protocol.FormatCelsius(celsius)), Time: s.now()}
	return nil
}

func (s *State) Close() error { return nil }

// Latest returns a copy of the current snapshot.
func (s *State) Latest() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out Snapshot
	if s.snap.CO2 != nil {
		c := *s.snap.CO2
		out.CO2 = &c
	}
	if s.snap.Temperature != nil {
		t := *s.snap.Temperature
		out.Temperature = &t
	}
	return out
}

// LastUpdate returns the time of the newest reading, or the zero time.
func (s *State) LastUpdate() time.Time {
	snap := s.Latest()
	var last time.Time
	if snap.CO2 != nil {
		last = snap.CO2.Time
	}
	if snap.Temperature != nil && snap.Temperature.Time.After(last) {
		last = snap.Temperature.Time
	}
	return last
}

func (s *State) handleLatest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Latest())
}

type health struct {
	Status     string     `json:"status"`
	LastUpdate *time.Time `json:"last_update,omitempty"`
}

func (s *State) healthHandler(staleAfter time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		last := s.LastUpdate()
		switch {
		case last.IsZero():
			writeJSON(w, http.StatusServiceUnavailable, health{Status: "waiting"})
		case s.now().Sub(last) > staleAfter:
			writeJSON(w, http.StatusServiceUnavailable, health{Status: "stale", LastUpdate: &last})
		default:
			writeJSON(w, http.StatusOK, health{Status: "ok", LastUpdate: &last})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
