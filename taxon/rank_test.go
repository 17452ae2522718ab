package taxon

import (
	"errors"
	"testing"
)

func TestRankOrdering(t *testing.T) {
	ranks := []Rank{RankRoot, RankKingdom, RankPhylum, RankClass, RankOrder, RankFamily, RankGenus, RankSpecies}

	for i := 1; i < len(ranks); i++ {
		if ranks[i-1] >= ranks[i] {
			t.Errorf("rank order broken: %s >= %s", ranks[i-1], ranks[i])
		}
	}

	if len(ranks) != MaxDepth {
		t.Errorf("MaxDepth = %d, want %d", MaxDepth, len(ranks))
	}
}

func TestRankString(t *testing.T) {
	tests := []struct {
		rank Rank
		want string
	}{
		{RankRoot, "stateofmatter"},
		{RankKingdom, "kingdom"},
		{RankPhylum, "phylum"},
		{RankClass, "class"},
		{RankOrder, "order"},
		{RankFamily, "family"},
		{RankGenus, "genus"},
		{RankSpecies, "species"},
		{Rank(99), "unknown"},
		{Rank(-1), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.rank.String(); got != tt.want {
			t.Errorf("Rank(%d).String() = %q, want %q", int(tt.rank), got, tt.want)
		}
	}
}

func TestParseRank(t *testing.T) {
	tests := []struct {
		in      string
		want    Rank
		wantErr bool
	}{
		{"stateofmatter", RankRoot, false},
		{"root", RankRoot, false},
		{"kingdom", RankKingdom, false},
		{"phylum", RankPhylum, false},
		{"class", RankClass, false},
		{"order", RankOrder, false},
		{"family", RankFamily, false},
		{"genus", RankGenus, false},
		{"species", RankSpecies, false},
		{"subspecies", 0, true},
		{"", 0, true},
		{"Kingdom", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseRank(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRank(%q) should fail", tt.in)
			}
			if !errors.Is(err, ErrUnknownRank) {
				t.Errorf("ParseRank(%q) error = %v, want ErrUnknownRank", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseRank(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRank(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseRankRoundTrip(t *testing.T) {
	for r := RankRoot; r <= RankSpecies; r++ {
		got, err := ParseRank(r.String())
		if err != nil {
			t.Fatalf("ParseRank(%q) failed: %v", r.String(), err)
		}
		if got != r {
			t.Errorf("round trip %s -> %s", r, got)
		}
	}
}
