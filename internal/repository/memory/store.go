package memory

import (
	"context"
	"sync"

	"github.com/mamadbah2/eggtracker/internal/repository"
)

// Store keeps blobs in process memory. Failures can be injected per operation.
type Store struct {
	mu        sync.Mutex
	blobs     map[repository.Key][]byte
	getErr    error
	putErr    map[repository.Key]error
	putAllErr error
}

var _ repository.BlobStore = (*Store)(nil)

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		blobs:  make(map[repository.Key][]byte),
		putErr: make(map[repository.Key]error),
	}
}

// FailGet makes every Get return err until cleared with nil.
func (s *Store) FailGet(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getErr = err
}

// FailPut makes Put on key return err until cleared with nil.
func (s *Store) FailPut(key repository.Key, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.putErr, key)
		return
	}
	s.putErr[key] = err
}

// FailPutAll makes PutAll return err until cleared with nil.
func (s *Store) FailPutAll(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putAllErr = err
}

func (s *Store) Get(_ context.Context, key repository.Key) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	data, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (s *Store) Put(_ context.Context, key repository.Key, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.putErr[key]; err != nil {
		return err
	}
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) PutAll(_ context.Context, blobs map[repository.Key][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putAllErr != nil {
		return s.putAllErr
	}
	next := make(map[repository.Key][]byte, len(blobs))
	for k, v := range blobs {
		next[k] = append([]byte(nil), v...)
	}
	s.blobs = next
	return nil
}

func (s *Store) Close(context.Context) error { return nil }
