package synthetic

import (
	"context"
	"testing"
)

func TestGeneratorIsDeterministic(t *testing.T) {
	keywords := []string{"ivory carving", "rhino horn"}

	a, err := New(42, 10).Fetch(context.Background(), keywords)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, err := New(42, 10).Fetch(context.Background(), keywords)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(a) != 20 || len(b) != 20 {
		t.Fatalf("expected 20 listings each, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Title != b[i].Title || a[i].URL != b[i].URL || a[i].RawPrice != b[i].RawPrice {
			t.Errorf("listing %d differs between identical runs", i)
		}
	}
}

func TestGeneratorTagsFixtureData(t *testing.T) {
	listings, err := New(7, 5).Fetch(context.Background(), []string{"elephant tusk"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	urls := make(map[string]bool)
	for _, l := range listings {
		if l.Platform != "synthetic" {
			t.Errorf("platform = %q; fixture data must be tagged synthetic", l.Platform)
		}
		if urls[l.URL] {
			t.Errorf("duplicate URL %s", l.URL)
		}
		urls[l.URL] = true
	}
}

func TestGeneratorDifferentSeedsDiffer(t *testing.T) {
	a, _ := New(1, 10).Fetch(context.Background(), []string{"pangolin scale"})
	b, _ := New(2, 10).Fetch(context.Background(), []string{"pangolin scale"})

	same := 0
	for i := range a {
		if a[i].URL == b[i].URL {
			same++
		}
	}
	if same == len(a) {
		t.Error("different seeds produced identical output")
	}
}
