package kb

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/signalsfoundry/interference-hypergraph/core"
	"github.com/signalsfoundry/interference-hypergraph/model"
)

var (
	ErrStationExists   = errors.New("station already exists")
	ErrStationNotFound = errors.New("station not found")
	ErrInvalidID       = errors.New("station IDs start at 1")
)

// EventType indicates what kind of change happened in the store.
type EventType int

const (
	EventStationMoved EventType = iota
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type    EventType
	Station model.Station
}

// StationStore is an in-memory, thread-safe store for stations.
type StationStore struct {
	mu sync.RWMutex

	stations map[int]*model.Station

	subs   map[int]func(Event)
	nextID int
}

// NewStationStore constructs an empty store.
func NewStationStore() *StationStore {
	return &StationStore{
		stations: make(map[int]*model.Station),
		subs:     make(map[int]func(Event)),
	}
}

// AddStation adds a new station. It returns an error if the ID already
// exists or is not positive.
func (s *StationStore) AddStation(st model.Station) error {
	if st.ID < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidID, st.ID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.stations[st.ID]; exists {
		return fmt.Errorf("%w: %d", ErrStationExists, st.ID)
	}
	s.stations[st.ID] = &st
	return nil
}

// AddStations adds each station, stopping at the first failure.
func (s *StationStore) AddStations(sts ...model.Station) error {
	for _, st := range sts {
		if err := s.AddStation(st); err != nil {
			return err
		}
	}
	return nil
}

// GetStation returns a copy of the station with the given ID.
func (s *StationStore) GetStation(id int) (model.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stations[id]
	if !ok {
		return model.Station{}, false
	}
	return *st, true
}

// ListStations returns a snapshot of all stations ordered by ID.
func (s *StationStore) ListStations() []model.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]model.Station, 0, len(s.stations))
	for _, st := range s.stations {
		res = append(res, *st)
	}
	slices.SortFunc(res, func(a, b model.Station) int { return a.ID - b.ID })
	return res
}

// Len returns the number of stations.
func (s *StationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stations)
}

// Locations returns every station's location ordered by ID, ready to hand
// to the generator.
func (s *StationStore) Locations() []core.Point {
	sts := s.ListStations()
	out := make([]core.Point, len(sts))
	for i, st := range sts {
		out[i] = core.Point{X: st.Location.X, Y: st.Location.Y}
	}
	return out
}

// UpdateStationLocation moves a station and notifies subscribers.
func (s *StationStore) UpdateStationLocation(id int, loc model.Location) error {
	s.mu.Lock()
	st, ok := s.stations[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrStationNotFound, id)
	}
	st.Location = loc
	event := Event{
		Type:    EventStationMoved,
		Station: *st,
	}
	subs := s.subscribersLocked()
	s.mu.Unlock()

	// Notify outside the lock so callbacks may read the store.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Subscribe registers a callback for store events. It returns an
// unsubscribe function that is safe to call more than once.
func (s *StationStore) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

func (s *StationStore) subscribersLocked() []func(Event) {
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Event), len(ids))
	for i, id := range ids {
		out[i] = s.subs[id]
	}
	return out
}
