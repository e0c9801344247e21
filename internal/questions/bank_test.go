package questions

import (
	"strings"
	"testing"
)

func TestDefault_Loads(t *testing.T) {
	b := Default()
	if b.Len() != 24 {
		t.Fatalf("expected 24 questions, got %d", b.Len())
	}
	for _, c := range AllCategories() {
		qs := b.ByCategory(c)
		if len(qs) != 6 {
			t.Errorf("category %s: expected 6 questions, got %d", c, len(qs))
		}
		levels := map[Difficulty]int{}
		for _, q := range qs {
			levels[q.Difficulty]++
		}
		for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
			if levels[d] == 0 {
				t.Errorf("category %s has no %s question", c, d)
			}
		}
	}
}

func TestDefault_LikertOptionsOrdered(t *testing.T) {
	for _, q := range Default().All() {
		if q.Type != TypeLikert {
			continue
		}
		if q.OptionIndex("Never") != 0 {
			t.Errorf("%s: expected Never at index 0", q.ID)
		}
		if q.OptionIndex("Always") != len(q.Options)-1 {
			t.Errorf("%s: expected Always as last option", q.ID)
		}
		if q.OptionIndex("  often ") != 3 {
			t.Errorf("%s: matching should ignore case and padding", q.ID)
		}
		if q.OptionIndex("maybe") != -1 {
			t.Errorf("%s: unknown option should return -1", q.ID)
		}
	}
}

func TestByID(t *testing.T) {
	b := Default()
	q, ok := b.ByID("soc-01")
	if !ok {
		t.Fatal("soc-01 not found")
	}
	if q.Category != CategorySocial || q.Difficulty != DifficultyEasy {
		t.Errorf("unexpected question: %+v", q)
	}
	if _, ok := b.ByID("nope"); ok {
		t.Error("expected lookup of unknown ID to fail")
	}
}

func TestPick_Fallbacks(t *testing.T) {
	b := Default()

	q, ok := b.Pick(CategoryCommunication, DifficultyMedium, nil)
	if !ok || q.ID != "com-03" {
		t.Fatalf("expected com-03, got %q (ok=%v)", q.ID, ok)
	}

	// Both medium communication questions answered: fall back to any difficulty.
	answered := map[string]bool{"com-03": true, "com-04": true}
	q, ok = b.Pick(CategoryCommunication, DifficultyMedium, answered)
	if !ok || q.ID != "com-01" {
		t.Fatalf("expected com-01, got %q", q.ID)
	}

	// Whole category answered: fall back to catalog order.
	answered = map[string]bool{}
	for _, cq := range b.ByCategory(CategorySensory) {
		answered[cq.ID] = true
	}
	q, ok = b.Pick(CategorySensory, DifficultyHard, answered)
	if !ok || q.ID != "soc-01" {
		t.Fatalf("expected soc-01, got %q", q.ID)
	}

	// Everything answered.
	for _, aq := range b.All() {
		answered[aq.ID] = true
	}
	if _, ok := b.Pick(CategorySocial, DifficultyEasy, answered); ok {
		t.Error("expected no question when all are answered")
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "duplicate id",
			yaml: `questions:
  - {id: a, category: social, difficulty: easy, type: open, weight: 1, text: x}
  - {id: a, category: social, difficulty: easy, type: open, weight: 1, text: y}`,
			want: "duplicate question ID",
		},
		{
			name: "unknown category",
			yaml: `questions:
  - {id: a, category: motor, difficulty: easy, type: open, weight: 1, text: x}`,
			want: "unknown category",
		},
		{
			name: "likert without options",
			yaml: `questions:
  - {id: a, category: social, difficulty: easy, type: likert, weight: 1, text: x}`,
			want: "needs at least 2 options",
		},
		{
			name: "empty",
			yaml: `questions: []`,
			want: "bank is empty",
		},
		{
			name: "bad yaml",
			yaml: `questions: [`,
			want: "decode question bank",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
		})
	}
}

func TestDifficulty_Harder(t *testing.T) {
	tests := []struct {
		in, want Difficulty
	}{
		{DifficultyEasy, DifficultyMedium},
		{DifficultyMedium, DifficultyHard},
		{DifficultyHard, DifficultyHard},
	}
	for _, tt := range tests {
		if got := tt.in.Harder(); got != tt.want {
			t.Errorf("%s.Harder() = %s, want %s", tt.in, got, tt.want)
		}
	}
}
