package grades

import "testing"

func TestValidGrade(t *testing.T) {
	valid := []string{"A", "A+", "A-", "B", "B+", "B-", "C", "C+", "C-", "D", "D+", "D-", "F"}
	for _, g := range valid {
		if !ValidGrade(g) {
			t.Fatalf("%q should be a valid grade", g)
		}
	}

	invalid := []string{"", "E", "F+", "F-", "a", "AB", "A++", " A", "A ", "4.0"}
	for _, g := range invalid {
		if ValidGrade(g) {
			t.Fatalf("%q should not be a valid grade", g)
		}
	}
}
