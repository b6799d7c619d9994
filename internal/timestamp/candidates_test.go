package timestamp

import "testing"

func TestCandidateSet_Oldest(t *testing.T) {
	var s CandidateSet
	if _, ok := s.Oldest(); ok {
		t.Fatal("Oldest() on empty set ok = true, want false")
	}

	s.Add(Candidate{Time: Civil(2021, 1, 1, 10, 0, 0, 0), Backend: "exif", Field: "DateTimeOriginal"})
	s.Add(Candidate{Time: Civil(2020, 6, 15, 8, 0, 0, 0), Backend: "exiftool", Field: "XMP:CreateDate"})

	got, ok := s.Oldest()
	if !ok {
		t.Fatal("Oldest() ok = false, want true")
	}
	if want := Civil(2020, 6, 15, 8, 0, 0, 0); !got.Time.Equal(want) {
		t.Errorf("Oldest() = %s, want %s", got.Time, want)
	}
	if got.Field != "XMP:CreateDate" {
		t.Errorf("Oldest().Field = %q, want XMP:CreateDate", got.Field)
	}
}

func TestCandidateSet_Dedup(t *testing.T) {
	var s CandidateSet
	ts := Civil(2019, 8, 26, 9, 54, 50, 0)

	if !s.Add(Candidate{Time: ts, Field: "a"}) {
		t.Error("first Add() = false, want true")
	}
	if s.Add(Candidate{Time: ts, Field: "b"}) {
		t.Error("duplicate Add() = true, want false")
	}
	if s.Add(Candidate{}) {
		t.Error("Add(zero) = true, want false")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestCandidateSet_Sorted(t *testing.T) {
	var s CandidateSet
	s.Add(Candidate{Time: Civil(2022, 1, 1, 0, 0, 0, 0)})
	s.Add(Candidate{Time: Civil(2020, 1, 1, 0, 0, 0, 0)})
	s.Add(Candidate{Time: Civil(2021, 1, 1, 0, 0, 0, 0)})

	got := s.Sorted()
	if len(got) != 3 {
		t.Fatalf("Sorted() len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Time.Before(got[i].Time) {
			t.Errorf("Sorted()[%d] = %s not before %s", i-1, got[i-1].Time, got[i].Time)
		}
	}
}
