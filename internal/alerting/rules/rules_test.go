package rules

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want RuleSet
	}{
		{"2:50", RuleSet{{2, 50}}},
		{"2:50,3:60", RuleSet{{2, 50}, {3, 60}}},
		{"2:50,3:60,5:75", RuleSet{{2, 50}, {3, 60}, {5, 75}}},
		{"5:75,10:90", RuleSet{{5, 75}, {10, 90}}},
		{" 2 : 50 , 3 : 60 ", RuleSet{{2, 50}, {3, 60}}},
		// duplicates are kept, not collapsed
		{"2:50,2:50", RuleSet{{2, 50}, {2, 50}}},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.in, err)
		}
		if len(got) != len(c.want) {
			t.Fatalf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("Parse(%q)[%d] = %v, want %v", c.in, i, got[i], c.want[i])
			}
		}
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   "} {
		if _, err := Parse(in); !errors.Is(err, ErrEmptyRules) {
			t.Fatalf("Parse(%q) err = %v, want ErrEmptyRules", in, err)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		in  string
		pos int
	}{
		{"2", 1},
		{"2:50:60", 1},
		{"2:50,3", 2},
		{"a:50", 1},
		{"2:x", 1},
		{"2:50,three:60", 2},
		{"0:50", 1},
		{"-1:50", 1},
	}
	for _, c := range cases {
		_, err := Parse(c.in)
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Parse(%q) err = %v, want ParseError", c.in, err)
		}
		if perr.Pos != c.pos {
			t.Fatalf("Parse(%q) pos = %d, want %d", c.in, perr.Pos, c.pos)
		}
		if !strings.Contains(err.Error(), perr.Clause) {
			t.Fatalf("Parse(%q) error message %q does not name the clause", c.in, err)
		}
	}
}
