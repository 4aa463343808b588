package engine_test

import (
	"context"
	"sync"

	"github.com/malbeclabs/rollout-analytics/internal/rollout"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/query"
)

// fakeStore answers statements by name and records every executed statement.
type fakeStore struct {
	mu sync.Mutex

	unavailable bool
	scalars     map[string]int64
	ports       map[string][]rollout.PortsRow
	delivered   []rollout.DeliveredAddress
	statuses    []rollout.AddressStatus
	errs        map[string]error
	panicOn     string

	calls []query.Statement
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		scalars: map[string]int64{},
		ports:   map[string][]rollout.PortsRow{},
		errs:    map[string]error{},
	}
}

func (s *fakeStore) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.unavailable
}

func (s *fakeStore) record(stmt query.Statement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, stmt)
	if stmt.Name() == s.panicOn {
		panic("boom in " + stmt.Name())
	}
	return s.errs[stmt.Name()]
}

func (s *fakeStore) Scalar(_ context.Context, stmt query.Statement) (int64, error) {
	if err := s.record(stmt); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scalars[stmt.Name()], nil
}

func (s *fakeStore) Ports(_ context.Context, stmt query.Statement) ([]rollout.PortsRow, error) {
	if err := s.record(stmt); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ports[stmt.Name()], nil
}

func (s *fakeStore) DeliveredAddresses(_ context.Context, stmt query.Statement) ([]rollout.DeliveredAddress, error) {
	if err := s.record(stmt); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delivered, nil
}

func (s *fakeStore) AddressStatuses(_ context.Context, stmt query.Statement) ([]rollout.AddressStatus, error) {
	if err := s.record(stmt); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statuses, nil
}

func (s *fakeStore) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Name() == name {
			n++
		}
	}
	return n
}

func (s *fakeStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeStore) last() query.Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}
