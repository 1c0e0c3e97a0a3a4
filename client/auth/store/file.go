package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

// File persists keys as a single JSON document at an afs URL (file://, mem://, ...).
// Every Set, Delete or Apply uploads the whole snapshot, so the persisted document
// always reflects complete batches.
type File struct {
	mu      sync.Mutex
	fs      afs.Service
	URL     string
	options []storage.Option
	values  map[string]string
}

type fileSnapshot struct {
	Values map[string]string `json:"values"`
}

// NewFile creates a KeyValue persisted at URL.
func NewFile(URL string, options ...storage.Option) *File {
	return &File{fs: afs.New(), URL: URL, options: options}
}

func (f *File) Get(ctx context.Context, keys ...string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	ret := make(map[string]string, len(keys))
	for _, key := range keys {
		if value, ok := f.values[key]; ok {
			ret[key] = value
		}
	}
	return ret, nil
}

func (f *File) Set(ctx context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(ctx); err != nil {
		return err
	}
	next := f.copyValues()
	for k, v := range values {
		next[k] = v
	}
	return f.save(ctx, next)
}

func (f *File) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(ctx); err != nil {
		return err
	}
	next := f.copyValues()
	for _, key := range keys {
		delete(next, key)
	}
	return f.save(ctx, next)
}

func (f *File) Apply(ctx context.Context, values map[string]string, deleted []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.ensureLoaded(ctx); err != nil {
		return err
	}
	next := f.copyValues()
	for k, v := range values {
		next[k] = v
	}
	for _, key := range deleted {
		delete(next, key)
	}
	return f.save(ctx, next)
}

func (f *File) copyValues() map[string]string {
	ret := make(map[string]string, len(f.values))
	for k, v := range f.values {
		ret[k] = v
	}
	return ret
}

func (f *File) save(ctx context.Context, values map[string]string) error {
	data, err := json.MarshalIndent(fileSnapshot{Values: values}, "", "  ")
	if err != nil {
		return err
	}
	if err = f.fs.Upload(ctx, f.URL, 0o600, bytes.NewReader(data), f.options...); err != nil {
		return fmt.Errorf("failed to write credentials %v: %w", f.URL, err)
	}
	f.values = values
	return nil
}

func (f *File) ensureLoaded(ctx context.Context) error {
	if f.values != nil {
		return nil
	}
	exists, err := f.fs.Exists(ctx, f.URL, f.options...)
	if err != nil {
		return fmt.Errorf("failed to check credentials %v: %w", f.URL, err)
	}
	if !exists {
		f.values = map[string]string{}
		return nil
	}
	data, err := f.fs.DownloadWithURL(ctx, f.URL, f.options...)
	if err != nil {
		return fmt.Errorf("failed to read credentials %v: %w", f.URL, err)
	}
	var snapshot fileSnapshot
	if len(bytes.TrimSpace(data)) > 0 {
		if err = json.Unmarshal(data, &snapshot); err != nil {
			return fmt.Errorf("failed to decode credentials %v: %w", f.URL, err)
		}
	}
	if snapshot.Values == nil {
		snapshot.Values = map[string]string{}
	}
	f.values = snapshot.Values
	return nil
}
