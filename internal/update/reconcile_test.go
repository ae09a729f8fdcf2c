package update

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type fakeStore struct {
	mu           sync.Mutex
	downloads    []string // target filenames in call order
	removes      []string
	failDownload map[string]error // keyed by target filename
	failRemove   map[string]error // keyed by removed filename

	// onDownload, when set, runs after each successful download.
	onDownload func()
}

func (s *fakeStore) Download(ctx context.Context, url, filename string) error {
	s.mu.Lock()
	s.downloads = append(s.downloads, filename)
	err := s.failDownload[filename]
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if s.onDownload != nil {
		s.onDownload()
	}
	return nil
}

func (s *fakeStore) Remove(filename string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removes = append(s.removes, filename)
	return s.failRemove[filename]
}

func descriptor(current, target string) Descriptor {
	return Descriptor{
		FileName:         current,
		ProjectID:        "p1",
		CurrentVersionID: "v1",
		Latest: Target{
			VersionID:     "v2",
			VersionNumber: "2.0.0",
			FileName:      target,
			URL:           "https://cdn.example.com/" + target,
		},
	}
}

func TestApplyUpdatesBatch(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store, nil)

	res := r.Apply(context.Background(), []Descriptor{
		descriptor("sodium-1.0.0.jar", "sodium-2.0.0.jar"),
		descriptor("lithium-1.0.0.jar", "lithium-2.0.0.jar"),
	})

	if res.Updated != 2 || res.Failed != 0 {
		t.Errorf("result = %+v, want 2 updated", res)
	}
	if len(res.Applied) != 2 || res.Applied[0].FileName != "sodium-1.0.0.jar" {
		t.Errorf("Applied = %+v, want both descriptors in order", res.Applied)
	}
	if len(store.downloads) != 2 {
		t.Errorf("expected 2 downloads, got %v", store.downloads)
	}
	if len(store.removes) != 2 {
		t.Errorf("renamed updates must delete the replaced files, got %v", store.removes)
	}
}

func TestApplySameFilenameSkipsDelete(t *testing.T) {
	store := &fakeStore{}
	r := NewReconciler(store, nil)

	res := r.Apply(context.Background(), []Descriptor{
		descriptor("sodium.jar", "sodium.jar"),
	})

	if res.Updated != 1 {
		t.Errorf("result = %+v, want 1 updated", res)
	}
	if len(store.removes) != 0 {
		t.Errorf("same-name update must not delete, got %v", store.removes)
	}
}

func TestApplyContinuesAfterFailure(t *testing.T) {
	store := &fakeStore{
		failDownload: map[string]error{"b-2.0.0.jar": errors.New("404")},
	}
	r := NewReconciler(store, nil)

	res := r.Apply(context.Background(), []Descriptor{
		descriptor("a-1.0.0.jar", "a-2.0.0.jar"),
		descriptor("b-1.0.0.jar", "b-2.0.0.jar"),
		descriptor("c-1.0.0.jar", "c-2.0.0.jar"),
	})

	if res.Updated != 2 || res.Failed != 1 {
		t.Errorf("result = %+v, want 2 updated 1 failed", res)
	}
	if len(res.Applied) != 2 {
		t.Errorf("Applied = %+v, want only the two successful items", res.Applied)
	}
	for _, d := range res.Applied {
		if d.FileName == "b-1.0.0.jar" {
			t.Error("failed item must not appear in Applied")
		}
	}
	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrDownload) {
		t.Errorf("expected one ErrDownload, got %v", res.Errors)
	}
	// The failed item's old file must not be touched.
	for _, removed := range store.removes {
		if removed == "b-1.0.0.jar" {
			t.Error("failed update must leave the old file in place")
		}
	}
}

func TestApplyStaleDeleteFailureStillCounts(t *testing.T) {
	store := &fakeStore{
		failRemove: map[string]error{"a-1.0.0.jar": errors.New("EBUSY")},
	}
	r := NewReconciler(store, nil)

	res := r.Apply(context.Background(), []Descriptor{
		descriptor("a-1.0.0.jar", "a-2.0.0.jar"),
	})

	if res.Updated != 1 || res.Failed != 0 {
		t.Errorf("result = %+v, want the item counted as updated", res)
	}
	if len(res.Errors) != 1 || !errors.Is(res.Errors[0], ErrDeleteStale) {
		t.Errorf("expected one ErrDeleteStale, got %v", res.Errors)
	}
}

func TestApplyCancelledStopsBetweenItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &fakeStore{onDownload: cancel}
	r := NewReconciler(store, nil)

	res := r.Apply(ctx, []Descriptor{
		descriptor("a-1.0.0.jar", "a-2.0.0.jar"),
		descriptor("b-1.0.0.jar", "b-2.0.0.jar"),
	})

	if res.Updated != 1 {
		t.Errorf("completed items must stand, result = %+v", res)
	}
	if len(store.downloads) != 1 {
		t.Errorf("cancellation must stop further items, got %v", store.downloads)
	}
}

func TestApplyEmptyBatch(t *testing.T) {
	r := NewReconciler(&fakeStore{}, nil)
	res := r.Apply(context.Background(), nil)
	if res.Updated != 0 || res.Failed != 0 || len(res.Errors) != 0 {
		t.Errorf("empty batch must be a no-op, got %+v", res)
	}
}
