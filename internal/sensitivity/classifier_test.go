package sensitivity

import "testing"

func TestClassifyTiers(t *testing.T) {
	tests := []struct {
		name     string
		question string
		category string
		priority int
		level    string
		score    int
	}{
		{"critical war", "Will Russia declare war on X?", "", 1, LevelCritical, 100},
		{"critical coup", "Military coup in country Y by June?", "", 1, LevelCritical, 100},
		{"high election", "Who wins the 2026 election?", "", 2, LevelHigh, 80},
		{"high resignation", "Will the CEO resign this year?", "", 2, LevelHigh, 80},
		{"medium-high sanctions", "New sanctions on country Z?", "", 3, LevelMediumHigh, 60},
		{"medium-high via category", "Will X happen", "POLITICS", 3, LevelMediumHigh, 60},
		{"medium tech", "Will the chip export rules expand?", "", 4, LevelMedium, 40},
		{"low celebrity", "Celebrity couple divorce by December?", "", 5, LevelLow, 20},
		{"normal fallback", "Will it rain tomorrow?", "WEATHER", 5, LevelNormal, 0},
		{"empty input", "", "", 5, LevelNormal, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Classify(tt.question, tt.category)
			if s.Priority != tt.priority {
				t.Errorf("priority = %d, want %d", s.Priority, tt.priority)
			}
			if s.Level != tt.level {
				t.Errorf("level = %s, want %s", s.Level, tt.level)
			}
			if s.Score != tt.score {
				t.Errorf("score = %d, want %d", s.Score, tt.score)
			}
		})
	}
}

// A text matching a critical keyword and a low-tier keyword must
// short-circuit at the critical tier.
func TestClassifyShortCircuit(t *testing.T) {
	s := Classify("Will the coup end the celebrity president era?", "")
	if s.Level != LevelCritical {
		t.Errorf("level = %s, want %s", s.Level, LevelCritical)
	}
	if s.Priority != 1 {
		t.Errorf("priority = %d, want 1", s.Priority)
	}
}

// Word boundaries: "warsaw" must not match "war".
func TestClassifyWordBoundary(t *testing.T) {
	s := Classify("Will Warsaw host the summit?", "")
	if s.Level == LevelCritical {
		t.Error("substring 'war' inside 'warsaw' must not classify as critical")
	}
}

func TestClassifyMatchedKeywords(t *testing.T) {
	s := Classify("Will there be an invasion of X?", "")
	if len(s.MatchedKeywords) != 1 || s.MatchedKeywords[0] != "invasion" {
		t.Errorf("matched keywords = %v, want [invasion]", s.MatchedKeywords)
	}
}

// Required signal count is non-decreasing as priority falls from 1 to 5.
func TestRequiredSignalCountMonotonic(t *testing.T) {
	want := []int{1, 1, 2, 3, 3}
	prev := 0
	for p := 1; p <= 5; p++ {
		got := RequiredSignalCount(Sensitivity{Priority: p})
		if got != want[p-1] {
			t.Errorf("priority %d: required = %d, want %d", p, got, want[p-1])
		}
		if got < prev {
			t.Errorf("priority %d: required count decreased from %d to %d", p, prev, got)
		}
		prev = got
	}
}
