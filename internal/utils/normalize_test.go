package utils

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Iron Temple Gym", "iron-temple-gym"},
		{"  Côté Fitness  ", "cote-fitness"},
		{"CrossFit__Box 24/7", "crossfit-box-247"},
		{"", ""},
		{"---", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSearchTokens(t *testing.T) {
	tokens := SearchTokens("Jane Smith", "Acme Gyms Ltd")

	want := map[string]bool{
		"jane smith": true, "jane": true, "smith": true,
		"acme gyms ltd": true, "acme": true, "gyms": true, "ltd": true,
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens %v, want %d", len(tokens), tokens, len(want))
	}
	for _, tok := range tokens {
		if !want[tok] {
			t.Errorf("unexpected token %q", tok)
		}
	}
}

func TestSearchTokensDedupes(t *testing.T) {
	tokens := SearchTokens("gym", "gym")
	if len(tokens) != 1 {
		t.Fatalf("expected deduped single token, got %v", tokens)
	}
}

func TestIsValidHHMM(t *testing.T) {
	valid := []string{"00:00", "9:30", "09:30", "23:59"}
	invalid := []string{"24:00", "12:60", "930", "12:3", "", "aa:bb"}

	for _, v := range valid {
		if !IsValidHHMM(v) {
			t.Errorf("IsValidHHMM(%q) = false, want true", v)
		}
	}
	for _, v := range invalid {
		if IsValidHHMM(v) {
			t.Errorf("IsValidHHMM(%q) = true, want false", v)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	if !IsValidDate("2025-02-28") {
		t.Error("expected valid date")
	}
	if IsValidDate("2025-02-30") || IsValidDate("2025/02/28") || IsValidDate("") {
		t.Error("expected invalid date")
	}
}

func TestTrimMax(t *testing.T) {
	if got := TrimMax("  hello  ", 10); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := TrimMax("abcdef", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
}
