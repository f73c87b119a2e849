package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Verb", "Misses", "Rate"}
	rows := [][]string{
		{"ir", "3/4", "75%"},
		{"soñar", "1/10", "10%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Verb  Misses Rate" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "ir       3/4  75%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "soñar   1/10  10%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}
