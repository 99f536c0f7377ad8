package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"yt2mp3/domain/retention"
	"yt2mp3/infrastructure/metrics"
)

// mockStore implements retention.Store for testing
type mockStore struct {
	files     []retention.StoredFile
	listErr   error
	removeErr map[string]error
	removed   []string
}

func (m *mockStore) List() ([]retention.StoredFile, error) {
	return m.files, m.listErr
}

func (m *mockStore) Remove(name string) error {
	if err := m.removeErr[name]; err != nil {
		return err
	}
	m.removed = append(m.removed, name)
	return nil
}

// mockRecorder captures sweep metrics
type mockRecorder struct {
	metrics.NoopRecorder
	removed int
	freed   int64
}

func (m *mockRecorder) AddSweep(removed int, freed int64) {
	m.removed += removed
	m.freed += freed
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSweepService(store *mockStore, rec metrics.Recorder) *SweepService {
	s := NewSweepService(store, rec, nil)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestSweepService_Sweep(t *testing.T) {
	store := &mockStore{files: []retention.StoredFile{
		{Name: "old1.mp3", Size: 100, ModTime: fixedNow.Add(-3 * time.Hour)},
		{Name: "old2.mp3", Size: 200, ModTime: fixedNow.Add(-2 * time.Hour)},
		{Name: "new.mp3", Size: 300, ModTime: fixedNow.Add(-10 * time.Minute)},
	}}
	rec := &mockRecorder{}
	svc := newTestSweepService(store, rec)

	result, err := svc.Sweep(context.Background(), time.Hour)
	if err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}

	if len(result.RemovedFiles) != 2 {
		t.Fatalf("removed %d files, want 2", len(result.RemovedFiles))
	}
	if result.FreedBytes != 300 {
		t.Errorf("FreedBytes = %d, want 300", result.FreedBytes)
	}
	if result.Kept != 1 {
		t.Errorf("Kept = %d, want 1", result.Kept)
	}
	if rec.removed != 2 || rec.freed != 300 {
		t.Errorf("recorder got removed=%d freed=%d", rec.removed, rec.freed)
	}
}

func TestSweepService_ContinuesPastFailures(t *testing.T) {
	store := &mockStore{
		files: []retention.StoredFile{
			{Name: "locked.mp3", Size: 10, ModTime: fixedNow.Add(-2 * time.Hour)},
			{Name: "old.mp3", Size: 20, ModTime: fixedNow.Add(-2 * time.Hour)},
		},
		removeErr: map[string]error{"locked.mp3": errors.New("permission denied")},
	}
	svc := newTestSweepService(store, nil)

	result, err := svc.Sweep(context.Background(), time.Hour)
	if err == nil {
		t.Fatal("expected joined error for locked file")
	}
	if len(store.removed) != 1 || store.removed[0] != "old.mp3" {
		t.Errorf("removed = %v, want [old.mp3]", store.removed)
	}
	if result.FreedBytes != 20 {
		t.Errorf("FreedBytes = %d, want 20", result.FreedBytes)
	}
}

func TestSweepService_InvalidMaxAge(t *testing.T) {
	svc := newTestSweepService(&mockStore{}, nil)
	for _, age := range []time.Duration{0, -time.Second} {
		if _, err := svc.Sweep(context.Background(), age); !errors.Is(err, retention.ErrInvalidMaxAge) {
			t.Errorf("Sweep(%v) error = %v, want ErrInvalidMaxAge", age, err)
		}
	}
}

func TestSweepService_ListError(t *testing.T) {
	svc := newTestSweepService(&mockStore{listErr: errors.New("io")}, nil)
	if _, err := svc.Sweep(context.Background(), time.Hour); err == nil {
		t.Error("expected list error")
	}
}

func TestSweepService_CanceledContext(t *testing.T) {
	store := &mockStore{files: []retention.StoredFile{
		{Name: "old.mp3", Size: 1, ModTime: fixedNow.Add(-2 * time.Hour)},
	}}
	svc := newTestSweepService(store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Sweep(ctx, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Sweep() error = %v, want context.Canceled", err)
	}
	if len(store.removed) != 0 {
		t.Errorf("nothing should be removed after cancellation, got %v", store.removed)
	}
}
