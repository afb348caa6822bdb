// Package receipts stores transaction receipt images in object storage.
// The core only ever keeps the returned object path on the transaction row;
// it never interprets the file bytes.
package receipts

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"

	"github.com/samurainet-antonius/duitkita-financial-hub/internal/apperr"
)

// maxReceiptSize caps uploads at 10 MiB, matching the client-side limit.
const maxReceiptSize = 10 << 20

type Store struct {
	Bucket string
	client *storage.Client
}

// NewStore creates a store over the given bucket using Application Default
// Credentials. An empty bucket name disables the store.
func NewStore(ctx context.Context, bucket string) (*Store, error) {
	if bucket == "" {
		return nil, nil
	}
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &Store{Bucket: bucket, client: client}, nil
}

func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// Save streams a receipt into the bucket under <userID>/<ts>-<filename> and
// returns the object path to store on the transaction.
func (s *Store) Save(ctx context.Context, userID, filename string, contentType string, r io.Reader) (string, error) {
	objectName := fmt.Sprintf("%s/%d-%s", userID, time.Now().UnixMilli(), path.Base(filename))

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.Bucket).Object(objectName).NewWriter(ctx)
	w.ContentType = contentType

	n, err := io.Copy(w, io.LimitReader(r, maxReceiptSize+1))
	if err != nil {
		_ = w.Close()
		return "", fmt.Errorf("upload receipt: %w", err)
	}
	if n > maxReceiptSize {
		_ = w.Close()
		return "", apperr.Validation("receipt larger than 10MB")
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize receipt upload: %w", err)
	}

	return objectName, nil
}

// Open returns a reader over a stored receipt for the download endpoint.
func (s *Store) Open(ctx context.Context, objectPath string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.Bucket).Object(objectPath).NewReader(ctx)
	if err == storage.ErrObjectNotExist {
		return nil, apperr.NotFound("receipt not found")
	}
	if err != nil {
		return nil, fmt.Errorf("open receipt %s: %w", objectPath, err)
	}
	return rc, nil
}
