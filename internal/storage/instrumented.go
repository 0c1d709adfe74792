package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// Observer receives the outcome of every blob operation.
type Observer interface {
	ObserveBlobOp(op string, started time.Time, err error)
}

type instrumentedStore struct {
	BlobStore
	observer Observer
}

// Instrument reports Put, Get, Delete and PresignGet calls to observer.
// A missing blob is not counted as a failure.
func Instrument(store BlobStore, observer Observer) BlobStore {
	if observer == nil {
		return store
	}
	return &instrumentedStore{BlobStore: store, observer: observer}
}

func (s *instrumentedStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	started := time.Now()
	location, err := s.BlobStore.Put(ctx, key, r, size, contentType)
	s.observe("put", started, err)
	return location, err
}

func (s *instrumentedStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	started := time.Now()
	rc, err := s.BlobStore.Get(ctx, key)
	s.observe("get", started, err)
	return rc, err
}

func (s *instrumentedStore) Delete(ctx context.Context, key string) error {
	started := time.Now()
	err := s.BlobStore.Delete(ctx, key)
	s.observe("delete", started, err)
	return err
}

func (s *instrumentedStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	started := time.Now()
	url, err := s.BlobStore.PresignGet(ctx, key, ttl)
	s.observe("presign", started, err)
	return url, err
}

func (s *instrumentedStore) observe(op string, started time.Time, err error) {
	if errors.Is(err, ErrBlobNotFound) {
		err = nil
	}
	s.observer.ObserveBlobOp(op, started, err)
}
