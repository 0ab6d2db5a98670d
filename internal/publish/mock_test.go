package publish

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/databricks/databricks-sdk-go/service/ml"
)

// mockExperiments implements ExperimentsAPI for testing.
type mockExperiments struct {
	runID     string
	created   []ml.CreateRun
	updated   []ml.UpdateRun
	params    []ml.LogParam
	metrics   []ml.LogMetric
	createErr error
	metricErr error
}

func (m *mockExperiments) CreateRun(_ context.Context, req ml.CreateRun) (*ml.CreateRunResponse, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, req)
	return &ml.CreateRunResponse{Run: &ml.Run{Info: &ml.RunInfo{RunId: m.runID}}}, nil
}

func (m *mockExperiments) UpdateRun(_ context.Context, req ml.UpdateRun) (*ml.UpdateRunResponse, error) {
	m.updated = append(m.updated, req)
	return &ml.UpdateRunResponse{}, nil
}

func (m *mockExperiments) LogMetric(_ context.Context, req ml.LogMetric) error {
	if m.metricErr != nil {
		return m.metricErr
	}
	m.metrics = append(m.metrics, req)
	return nil
}

func (m *mockExperiments) LogParam(_ context.Context, req ml.LogParam) error {
	m.params = append(m.params, req)
	return nil
}

func (m *mockExperiments) metric(key string) (float64, bool) {
	for _, lm := range m.metrics {
		if lm.Key == key {
			return lm.Value, true
		}
	}
	return 0, false
}

// mockStore implements objectStore in memory.
type mockStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	types    map[string]string
	closeErr error
	writeErr error
	closed   bool
	writers  []*mockWriter
}

func newMockStore() *mockStore {
	return &mockStore{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *mockStore) NewWriter(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
	w := &mockWriter{ctx: ctx, store: m, key: bucket + "/" + object, contentType: contentType}
	m.mu.Lock()
	m.writers = append(m.writers, w)
	m.mu.Unlock()
	return w
}

func (m *mockStore) Close() error {
	m.closed = true
	return nil
}

type mockWriter struct {
	ctx         context.Context
	closes      int
	store       *mockStore
	key         string
	contentType string
	buf         bytes.Buffer
}

func (w *mockWriter) Write(p []byte) (int, error) {
	if w.store.writeErr != nil {
		return 0, w.store.writeErr
	}
	return w.buf.Write(p)
}

// Close commits the buffered bytes unless the writer's context was cancelled.
func (w *mockWriter) Close() error {
	w.closes++
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if w.store.closeErr != nil {
		return w.store.closeErr
	}
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	w.store.objects[w.key] = w.buf.Bytes()
	w.store.types[w.key] = w.contentType
	return nil
}

var errInjected = errors.New("injected failure")
