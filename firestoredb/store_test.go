package firestoredb

import (
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/go-cmp/cmp"
)

func TestNestBuildsMergeMap(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	got := nest(map[string]any{
		"scheduledPosting.lastRun": at,
		"scheduledPosting.enabled": true,
		"name":                     "Marlang",
	})
	want := map[string]any{
		"scheduledPosting": map[string]any{"lastRun": at, "enabled": true},
		"name":             "Marlang",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("nest mismatch (-want +got):\n%s", diff)
	}
}

func TestToUpdatesSortedByPath(t *testing.T) {
	got := toUpdates(map[string]any{"b": 2, "a.c": 1})
	want := []firestore.Update{{Path: "a.c", Value: 1}, {Path: "b", Value: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("updates mismatch (-want +got):\n%s", diff)
	}
}
