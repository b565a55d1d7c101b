package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"flowScope/internal/model"
)

// JsonlStorage appends projection records to a JSONL file and reads the
// newest one back.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutProjectionBatch appends a batch of records as JSON lines.
func (s *JsonlStorage) PutProjectionBatch(_ context.Context, records []model.ProjectionRecord) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal projection record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write projection record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// LatestProjection scans the file for the record with the newest ObservedAt.
// A missing file yields no record.
func (s *JsonlStorage) LatestProjection(_ context.Context, account, token, receiver string) (model.ProjectionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.ProjectionRecord{}, false, nil
		}
		return model.ProjectionRecord{}, false, fmt.Errorf("open projections: %w", err)
	}
	defer file.Close()

	var (
		latest model.ProjectionRecord
		found  bool
		line   int
	)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line++
		if len(bytes.TrimSpace(scanner.Bytes())) == 0 {
			continue
		}
		var rec model.ProjectionRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return model.ProjectionRecord{}, false, fmt.Errorf("decode line %d: %w", line, err)
		}
		if !strings.EqualFold(rec.Account, account) || !strings.EqualFold(rec.Token, token) || !strings.EqualFold(rec.Receiver, receiver) {
			continue
		}
		if !found || !rec.ObservedAt.Before(latest.ObservedAt) {
			latest = rec
			found = true
		}
	}
	if err := scanner.Err(); err != nil {
		return model.ProjectionRecord{}, false, fmt.Errorf("read projections: %w", err)
	}
	return latest, found, nil
}

// Multi writes each batch to every sink in order and stops at the first error.
type Multi []Storage

func (m Multi) PutProjectionBatch(ctx context.Context, records []model.ProjectionRecord) error {
	for _, sink := range m {
		if err := sink.PutProjectionBatch(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

// LatestProjection returns the newest record across every sink that can read.
func (m Multi) LatestProjection(ctx context.Context, account, token, receiver string) (model.ProjectionRecord, bool, error) {
	var (
		latest model.ProjectionRecord
		found  bool
	)
	for _, sink := range m {
		reader, ok := sink.(Reader)
		if !ok {
			continue
		}
		rec, ok, err := reader.LatestProjection(ctx, account, token, receiver)
		if err != nil {
			return model.ProjectionRecord{}, false, err
		}
		if ok && (!found || rec.ObservedAt.After(latest.ObservedAt)) {
			latest = rec
			found = true
		}
	}
	return latest, found, nil
}
