package censor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestApply(t *testing.T) {
	t.Parallel()
	c := New()

	cases := []struct {
		name        string
		in          string
		want        string
		wantFlagged bool
	}{
		{"clean text", "Продам детскую коляску", "Продам детскую коляску", false},
		{"single term", "сука такая", "*** такая", true},
		{"case insensitive", "СУКА такая", "*** такая", true},
		{"mixed case", "СуКа такая", "*** такая", true},
		{"contact solicitation", "звоните 89991234567", "*** 89991234567", true},
		{"term embedded in word", "заебало всё", "***о всё", true},
		{"multiple occurrences", "сука и еще раз сука", "*** и еще раз ***", true},
		{"several terms", "телефон и номер", "*** и ***", true},
		{"empty", "", "", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, flagged := c.Apply(tc.in)
			if got != tc.want {
				t.Fatalf("Apply(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if flagged != tc.wantFlagged {
				t.Fatalf("Apply(%q) flagged = %v, want %v", tc.in, flagged, tc.wantFlagged)
			}
		})
	}
}

func TestApplyIdempotent(t *testing.T) {
	t.Parallel()
	c := New()

	inputs := []string{
		"звоните 89991234567",
		"сука и телефон",
		"обычный чистый текст",
	}
	for _, in := range inputs {
		once, _ := c.Apply(in)
		twice, flagged := c.Apply(once)
		if twice != once {
			t.Fatalf("second pass changed text: %q -> %q", once, twice)
		}
		if flagged {
			t.Fatalf("second pass flagged already-masked text %q", once)
		}
	}
}

func TestApplyExtraTerms(t *testing.T) {
	t.Parallel()
	c := New("гараж")

	got, flagged := c.Apply("Продам Гараж недорого")
	if !flagged || got != "Продам *** недорого" {
		t.Fatalf("Apply = (%q, %v)", got, flagged)
	}
}

func TestLoadTermsFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad_words.txt")
	content := "# комментарий\nгараж, Сарай\n\nдача\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	terms, err := LoadTermsFile(path)
	if err != nil {
		t.Fatalf("LoadTermsFile: %v", err)
	}
	want := []string{"гараж", "сарай", "дача"}
	if len(terms) != len(want) {
		t.Fatalf("terms = %v, want %v", terms, want)
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Fatalf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}
