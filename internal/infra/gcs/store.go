// Package gcs persists period tables as CSV objects in a Google Cloud
// Storage bucket. It is the flat-file backend: cleanse reads raw feeds
// from it and reconcile reads cleansed feeds, while exports land here
// next to the BigQuery copies.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/dataset"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/domain"
	"github.com/bubblybit23/end-to-end-financial-platform-project/internal/store"
)

// ObjectStore reads and writes period tables as CSV objects in one
// bucket. It assumes Application Default Credentials are configured
// (gcloud auth application-default login).
type ObjectStore struct {
	client *storage.Client
	bucket string
}

var (
	_ store.Loader = (*ObjectStore)(nil)
	_ store.Sink   = (*ObjectStore)(nil)
)

// NewObjectStore creates a store backed by the given bucket.
func NewObjectStore(ctx context.Context, bucket string) (*ObjectStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewObjectStore: creating storage client: %w", err)
	}
	return &ObjectStore{client: client, bucket: bucket}, nil
}

// Close releases the underlying client.
func (s *ObjectStore) Close() error {
	return s.client.Close()
}

// Name identifies the backend in logs and errors.
func (s *ObjectStore) Name() string { return "gcs" }

// ObjectPath is the bucket-relative path for one logical table and
// period. Objects are grouped by processing stage, then by period, so
// one period's artifacts share a listing prefix:
//
//	raw/20240131/source_transactions_20240131.csv
//	cleaned/20240131/cleaned_accounts_20240131.csv
//	reconciled/20240131/reconciled_transactions_20240131.csv
func ObjectPath(name string, period domain.Period) string {
	return prefixFor(name) + "/" + period.String() + "/" + store.Address(name, period) + ".csv"
}

func prefixFor(name string) string {
	switch {
	case strings.HasPrefix(name, "cleaned_"):
		return "cleaned"
	case strings.HasPrefix(name, "reconciled_"):
		return "reconciled"
	default:
		return "raw"
	}
}

// Store writes the table as one CSV object, replacing any previous
// version.
func (s *ObjectStore) Store(ctx context.Context, name string, period domain.Period, tab *dataset.Table) error {
	data, err := EncodeCSV(tab)
	if err != nil {
		return fmt.Errorf("Store: %w", err)
	}

	obj := s.client.Bucket(s.bucket).Object(ObjectPath(name, period))
	w := obj.NewWriter(ctx)
	w.ContentType = "text/csv"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("Store: writing gs://%s/%s: %w", s.bucket, obj.ObjectName(), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Store: finalizing gs://%s/%s: %w", s.bucket, obj.ObjectName(), err)
	}
	return nil
}

// Load reads one CSV object back as an all-text table. A missing
// object reports store.ErrNotFound; an empty object is a zero-row
// table, not an error.
func (s *ObjectStore) Load(ctx context.Context, name string, period domain.Period) (*dataset.Table, error) {
	obj := s.client.Bucket(s.bucket).Object(ObjectPath(name, period))
	rc, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("Load: gs://%s/%s: %w", s.bucket, obj.ObjectName(), store.ErrNotFound)
		}
		return nil, fmt.Errorf("Load: opening gs://%s/%s: %w", s.bucket, obj.ObjectName(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Load: reading gs://%s/%s: %w", s.bucket, obj.ObjectName(), err)
	}
	tab, err := DecodeCSV(data)
	if err != nil {
		return nil, fmt.Errorf("Load: gs://%s/%s: %w", s.bucket, obj.ObjectName(), err)
	}
	return tab, nil
}
