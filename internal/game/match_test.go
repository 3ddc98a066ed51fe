package game

import "testing"

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Hello,   World! ", "hello world"},
		{"Пари́ж", "париж"},
		{"Café au lait", "cafe au lait"},
		{"foo_bar 42", "foo_bar 42"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeText(tc.in); got != tc.want {
			t.Errorf("normalizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	for _, s := range []string{"Café au lait", "Пари́ж", "A  B\tC"} {
		once := normalizeText(s)
		if twice := normalizeText(once); twice != once {
			t.Errorf("normalizeText not idempotent for %q: %q != %q", s, once, twice)
		}
	}
}

func TestMaxEditDistance(t *testing.T) {
	cases := []struct {
		length int
		want   int
	}{
		{1, 0}, {4, 0}, {5, 1}, {12, 1}, {13, 2}, {40, 2},
	}
	for _, tc := range cases {
		if got := maxEditDistance(tc.length); got != tc.want {
			t.Errorf("maxEditDistance(%d) = %d, want %d", tc.length, got, tc.want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"colour", "color", 1},
		{"париж", "парис", 1},
	}
	for _, tc := range cases {
		if got := levenshtein(tc.a, tc.b); got != tc.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestMatchesAnswer(t *testing.T) {
	cases := []struct {
		name       string
		submission string
		answer     string
		want       bool
	}{
		{"exact", "Paris", "Paris", true},
		{"case and punctuation", "paris!", "Paris", true},
		{"accents", "Париж", "Пари́ж", true},
		{"containment", "the city of Paris", "Paris", true},
		{"typo within budget", "colour", "color ", true},
		{"typo over budget on short answer", "car", "cat", false},
		{"bracketed clarification stripped", "Paris", "Paris (capital of France)", true},
		{"alternatives", "Tokyo", "Rome/Paris/Tokyo", true},
		{"no alternative matches", "Berlin", "Rome/Paris", false},
		{"empty submission", "", "Paris", false},
		{"wrong answer", "Lyon", "Paris", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchesAnswer(tc.submission, tc.answer); got != tc.want {
				t.Fatalf("MatchesAnswer(%q, %q) = %v, want %v", tc.submission, tc.answer, got, tc.want)
			}
		})
	}
}
