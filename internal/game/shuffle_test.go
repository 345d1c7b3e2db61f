package game

import (
	"fmt"
	"sort"
	"testing"
)

type item struct {
	id  int
	typ string
}

func makeItems(counts map[string]int) []item {
	var items []item
	id := 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for i := 0; i < counts[k]; i++ {
			items = append(items, item{id: id, typ: k})
			id++
		}
	}
	return items
}

func sameMultiset(t *testing.T, in, out []item) {
	t.Helper()
	if len(in) != len(out) {
		t.Fatalf("len = %d, want %d", len(out), len(in))
	}
	seen := make(map[int]int)
	for _, it := range out {
		seen[it.id]++
	}
	for _, it := range in {
		if seen[it.id] != 1 {
			t.Fatalf("item %d appears %d times", it.id, seen[it.id])
		}
	}
}

func TestShuffleAvoidingConsecutiveNoNeighbours(t *testing.T) {
	tests := []map[string]int{
		{"A": 1, "B": 1},
		{"A": 2, "B": 1},
		{"A": 3, "B": 3},
		{"A": 5, "B": 4},
		{"A": 4, "B": 2, "C": 2},
		{"A": 3, "B": 3, "C": 3, "D": 1},
		{"FILL": 6, "LISTEN": 3, "WHEEL": 2, "SEARCH": 1},
	}

	for _, counts := range tests {
		t.Run(fmt.Sprint(counts), func(t *testing.T) {
			items := makeItems(counts)
			for trial := 0; trial < 200; trial++ {
				out := ShuffleAvoidingConsecutive(items, func(i item) string { return i.typ })
				sameMultiset(t, items, out)
				for i := 1; i < len(out); i++ {
					if out[i].typ == out[i-1].typ {
						t.Fatalf("trial %d: adjacent %q at %d in %v", trial, out[i].typ, i, out)
					}
				}
			}
		})
	}
}

func TestShuffleAvoidingConsecutiveImpossible(t *testing.T) {
	items := makeItems(map[string]int{"A": 3, "B": 1})
	for trial := 0; trial < 50; trial++ {
		out := ShuffleAvoidingConsecutive(items, func(i item) string { return i.typ })
		sameMultiset(t, items, out)
	}
}

func TestShuffleEdgeCases(t *testing.T) {
	if out := ShuffleAvoidingConsecutive([]item{}, func(i item) string { return i.typ }); len(out) != 0 {
		t.Errorf("empty input returned %v", out)
	}
	single := []item{{id: 7, typ: "A"}}
	if out := ShuffleAvoidingConsecutive(single, func(i item) string { return i.typ }); len(out) != 1 || out[0].id != 7 {
		t.Errorf("single input returned %v", out)
	}

	in := []int{1, 2, 3, 4, 5}
	out := Shuffle(in)
	if in[0] != 1 || in[4] != 5 {
		t.Error("Shuffle modified its input")
	}
	sort.Ints(out)
	for i, v := range out {
		if v != i+1 {
			t.Fatalf("Shuffle lost items: %v", out)
		}
	}
}
