package mocks

import (
	"context"
	"io"
	"sync"

	app_error "github.com/kellalakshmisrharsha/study-sphere-backend/internal/errors"
)

type BlobRepo struct {
	mu          sync.Mutex
	blobs       map[string][]byte
	types       map[string]string
	DeleteCalls []string

	// Errors keyed by blob name, returned by Put and Delete.
	Errors map[string]*app_error.AppError
	// OnDelete runs before a delete is applied, outside the lock.
	OnDelete func(name string)
}

func NewBlobRepo() *BlobRepo {
	return &BlobRepo{
		blobs:  make(map[string][]byte),
		types:  make(map[string]string),
		Errors: make(map[string]*app_error.AppError),
	}
}

func (b *BlobRepo) Seed(name string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[name] = content
}

func (b *BlobRepo) Put(ctx context.Context, name string, body io.Reader, contentType string) (string, *app_error.AppError) {
	b.mu.Lock()
	err := b.Errors[name]
	b.mu.Unlock()
	if err != nil {
		return "", err
	}

	content, readErr := io.ReadAll(body)
	if readErr != nil {
		return "", app_error.NewBlobError("failed to read upload", name, readErr)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[name] = content
	b.types[name] = contentType
	return "https://blobs.test/uploads/" + name, nil
}

func (b *BlobRepo) Delete(ctx context.Context, name string) *app_error.AppError {
	if b.OnDelete != nil {
		b.OnDelete(name)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.DeleteCalls = append(b.DeleteCalls, name)
	if err, ok := b.Errors[name]; ok {
		return err
	}
	if _, ok := b.blobs[name]; !ok {
		return app_error.NewBlobNotFoundError(name, nil)
	}
	delete(b.blobs, name)
	delete(b.types, name)
	return nil
}

func (b *BlobRepo) Has(name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blobs[name]
	return ok
}

func (b *BlobRepo) ContentType(name string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.types[name]
}

func (b *BlobRepo) Deletes() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string{}, b.DeleteCalls...)
}
