package catalog

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/verte-zerg/irregulars/internal/model"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if c.Len() < 15 {
		t.Fatalf("expected at least 15 verbs, got %d", c.Len())
	}
	all := c.All()
	if all[0].EN != [3]string{"be", "was", "been"} {
		t.Fatalf("unexpected first verb: %+v", all[0])
	}
}

func TestAllReturnsCopy(t *testing.T) {
	c := New([]model.Verb{{ES: "ir", EN: [3]string{"go", "went", "gone"}}}, rand.New(rand.NewSource(1)))
	all := c.All()
	all[0].ES = "changed"
	if c.All()[0].ES != "ir" {
		t.Fatalf("All must not expose internal slice")
	}
}

func TestSampleDistinctForSeeds(t *testing.T) {
	verbs := testVerbs(40)
	for seed := int64(0); seed < 50; seed++ {
		c := New(verbs, rand.New(rand.NewSource(seed)))
		sample, err := c.Sample(15)
		if err != nil {
			t.Fatalf("seed %d: Sample failed: %v", seed, err)
		}
		if len(sample) != 15 {
			t.Fatalf("seed %d: expected 15 verbs, got %d", seed, len(sample))
		}
		seen := map[string]bool{}
		for _, v := range sample {
			if seen[v.ES] {
				t.Fatalf("seed %d: duplicate verb %q", seed, v.ES)
			}
			seen[v.ES] = true
			if !strings.HasPrefix(v.ES, "v") {
				t.Fatalf("seed %d: verb %q not from catalog", seed, v.ES)
			}
		}
	}
}

func TestSampleWholeCatalogIsPermutation(t *testing.T) {
	verbs := testVerbs(10)
	c := New(verbs, rand.New(rand.NewSource(7)))
	sample, err := c.Sample(10)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	seen := map[string]bool{}
	for _, v := range sample {
		seen[v.ES] = true
	}
	if len(seen) != 10 {
		t.Fatalf("expected permutation of 10 verbs, got %d distinct", len(seen))
	}
}

func TestSampleOutOfRange(t *testing.T) {
	c := New(testVerbs(5), rand.New(rand.NewSource(1)))
	for _, n := range []int{0, -1, 6} {
		if _, err := c.Sample(n); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("Sample(%d): expected ErrInvalidArgument, got %v", n, err)
		}
	}
}

func TestParseRejectsBadLines(t *testing.T) {
	cases := map[string]string{
		"missing field": "ir|go|went",
		"uppercase":     "ir|Go|went|gone",
		"non ascii":     "ir|gö|went|gone",
		"empty prompt":  " |go|went|gone",
	}
	for name, input := range cases {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestParseSkipsCommentsAndBlank(t *testing.T) {
	input := "# header\n\nir|go|went|gone\n  \ncomer | eat | ate | eaten\n"
	verbs, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(verbs) != 2 {
		t.Fatalf("expected 2 verbs, got %d", len(verbs))
	}
	if verbs[1].ES != "comer" || verbs[1].EN[2] != "eaten" {
		t.Fatalf("unexpected verb: %+v", verbs[1])
	}
	if _, err := Parse(strings.NewReader("# only comments\n")); err == nil {
		t.Fatalf("expected error for empty list")
	}
}

func testVerbs(n int) []model.Verb {
	verbs := make([]model.Verb, n)
	for i := range verbs {
		verbs[i] = model.Verb{ES: "v" + string(rune('A'+i)), EN: [3]string{"a", "b", "c"}}
	}
	return verbs
}
