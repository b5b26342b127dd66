package steps

import "testing"

func TestCycleReturnsToIntroduction(t *testing.T) {
	r := Default()
	for _, s := range r.All() {
		id := s.ID
		seen := 0
		for {
			id = r.Next(id)
			seen++
			if id == Introduction {
				break
			}
			if seen > len(r.All()) {
				t.Fatalf("step %d never returns to 0", s.ID)
			}
		}
	}
}

func TestUnknownFallsBackToIntroduction(t *testing.T) {
	r := Default()
	for _, id := range []ID{7, 42, -5} {
		if got := r.Normalize(id); got != Introduction {
			t.Fatalf("Normalize(%d)=%d", id, got)
		}
		if got := r.Lookup(id).ID; got != Introduction {
			t.Fatalf("Lookup(%d).ID=%d", id, got)
		}
		if got := r.Next(id); got != LoginRequest {
			t.Fatalf("Next(%d)=%d, want 1", id, got)
		}
	}
}

func TestHeading(t *testing.T) {
	r := Default()
	cases := map[ID]string{
		Introduction:  "Introduction",
		AccessRequest: "Step 3: Access Request",
		FullStory:     "Full Story",
		99:            "Introduction",
	}
	for id, want := range cases {
		if got := r.Heading(id); got != want {
			t.Errorf("Heading(%d)=%q want %q", id, got, want)
		}
	}
}

func TestFullStoryIsNotInCycle(t *testing.T) {
	r := Default()
	if !r.Has(FullStory) {
		t.Fatal("sentinel missing")
	}
	for _, s := range r.All() {
		if s.ID == FullStory {
			t.Fatal("sentinel listed in cycle")
		}
	}
	if len(r.All()) != 7 {
		t.Fatalf("want 7 steps, got %d", len(r.All()))
	}
}
