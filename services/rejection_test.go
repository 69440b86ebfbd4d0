package services

import "testing"

func TestRejectionFilterObviousNonWildlife(t *testing.T) {
	f := NewRejectionFilter()

	tests := []struct {
		text       string
		reject     bool
		confidence float64
	}{
		{"", true, 0.9},
		{"ab", true, 0.9},
		{"beautiful elephant painting on canvas", true, 0.9},
		{"plush tiger for toddlers, machine washable", true, 0.9},
		{"faux ivory bracelet, looks real", true, 0.9},
		{"tiger hoodie size adult", true, 0.85},
		{"vinyl record of jungle sounds", true, 0.85},
		{"genuine elephant ivory carving", false, 0},
		{"rare pangolin scales direct from supplier", false, 0},
		{"live baby tortoise for private collection", false, 0},
	}

	for _, tt := range tests {
		got := f.Check(tt.text)
		if got.ShouldReject != tt.reject {
			t.Errorf("Check(%q).ShouldReject = %v; want %v (reason: %s)",
				tt.text, got.ShouldReject, tt.reject, got.Reason)
			continue
		}
		if tt.reject && got.Confidence != tt.confidence {
			t.Errorf("Check(%q).Confidence = %.2f; want %.2f",
				tt.text, got.Confidence, tt.confidence)
		}
	}
}

func TestRejectionFilterMultilingual(t *testing.T) {
	f := NewRejectionFilter()

	tests := []string{
		"peluche de tigre para niños",        // spanish toy
		"plüschtier elefant, sehr süß",       // german toy
		"статуэтка слона из фарфора",         // russian figurine
		"tranh vẽ con hổ đẹp",                // vietnamese painting
		"大象玩具，适合儿童",                  // chinese toy
	}

	for _, text := range tests {
		got := f.Check(text)
		if !got.ShouldReject {
			t.Errorf("Check(%q) should reject non-English replica/toy text", text)
		}
		if got.ShouldReject && got.Confidence != 0.85 {
			t.Errorf("Check(%q).Confidence = %.2f; want 0.85", text, got.Confidence)
		}
	}
}

func TestRejectionFilterStructuralPatterns(t *testing.T) {
	f := NewRejectionFilter()

	tests := []struct {
		text   string
		reject bool
	}{
		{"tiger cosplay outfit complete set", true},
		{"elephant wall sticker, brand new in box", true},
		{"rhino themed board game, complete", true},
		{"elephant ivory bangle, old estate", false},
	}

	for _, tt := range tests {
		got := f.Check(tt.text)
		if got.ShouldReject != tt.reject {
			t.Errorf("Check(%q).ShouldReject = %v; want %v", tt.text, got.ShouldReject, tt.reject)
		}
	}
}

func TestRejectionFilterFirstMatchWins(t *testing.T) {
	f := NewRejectionFilter()

	// Contains both a category term ("plush", conf 0.9) and a structural
	// pattern ("costume", conf 0.8): the category scan runs first.
	got := f.Check("plush tiger costume")
	if !got.ShouldReject {
		t.Fatal("expected rejection")
	}
	if got.Confidence != 0.9 {
		t.Errorf("Confidence = %.2f; want 0.9 (category before pattern)", got.Confidence)
	}
}

func TestRejectionFilterDeterministicAcrossLanguages(t *testing.T) {
	f := NewRejectionFilter()

	// Terms from three languages match at once; the scan order is fixed,
	// so the same language must win on every call.
	text := "juguete brinquedo spielzeug elephant ivory"

	want := `spanish term: "juguete"`
	for i := 0; i < 200; i++ {
		got := f.Check(text)
		if !got.ShouldReject {
			t.Fatal("expected rejection")
		}
		if got.Reason != want {
			t.Fatalf("call %d: Reason = %q; want %q", i, got.Reason, want)
		}
	}
}

func TestRejectionFilterIsPure(t *testing.T) {
	f := NewRejectionFilter()
	text := "vintage style tiger print cushion"

	a := f.Check(text)
	b := f.Check(text)
	if a != b {
		t.Errorf("Check not idempotent: %+v vs %+v", a, b)
	}
}
