package wird

import "testing"

func TestEstimate(t *testing.T) {
	cases := []struct {
		name     string
		minutes  int
		wantDays int
	}{
		{"", 10, 1},       // 0 runes -> length 1
		{"عم", 15, 1},     // 2 runes -> length 3
		{"الكهف", 10, 1},  // 5 runes -> length 1
		{"النصر", 20, 1},  // 5 runes -> length 1
		{"الملك", 10, 1},  // 5 runes
		{"يس", 10, 1},     // 2 runes -> length 3
		{"Kahf", 30, 2},    // 4 runes -> length 5
		{"Baqarah", 10, 1}, // 7 runes -> length 3
	}
	for _, c := range cases {
		days, daily := Estimate(c.name, c.minutes)
		if days != c.wantDays {
			t.Errorf("Estimate(%q) days = %d, want %d", c.name, days, c.wantDays)
		}
		if daily != c.minutes {
			t.Errorf("Estimate(%q) daily = %d, want echo of %d", c.name, daily, c.minutes)
		}
	}
}

func TestEstimateAlwaysAtLeastOneDay(t *testing.T) {
	names := []string{"", "a", "ab", "abc", "abcd", "abcde", "abcdef", "النبأ", "المرسلات"}
	for _, n := range names {
		if days, _ := Estimate(n, MinDuration); days < 1 {
			t.Errorf("Estimate(%q) = %d days, want >= 1", n, days)
		}
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	a1, _ := Estimate("الإسراء", 10)
	a2, _ := Estimate("الإسراء", 45)
	if a1 != a2 {
		t.Fatalf("days depend on duration: %d vs %d", a1, a2)
	}
}
