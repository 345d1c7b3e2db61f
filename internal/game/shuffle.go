package game

import "math/rand/v2"

// Shuffle returns a Fisher-Yates permutation of items. The input is not modified.
func Shuffle[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ShuffleAvoidingConsecutive returns a permutation of items in which no two neighbours
// share the same key, whenever that is achievable. If one key occurs more than
// ceil(n/2) times it cannot be, and a plain shuffle is returned instead.
func ShuffleAvoidingConsecutive[T any, K comparable](items []T, key func(T) K) []T {
	n := len(items)
	if n <= 1 {
		return Shuffle(items)
	}

	counts := make(map[K]int)
	maxCount := 0
	for _, item := range items {
		k := key(item)
		counts[k]++
		if counts[k] > maxCount {
			maxCount = counts[k]
		}
	}
	if maxCount > (n+1)/2 {
		return Shuffle(items)
	}

	// Bucket in shuffled order so items of the same type still come out randomised
	var order []K
	buckets := make(map[K][]T)
	for _, item := range Shuffle(items) {
		k := key(item)
		if _, seen := buckets[k]; !seen {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], item)
	}

	result := make([]T, 0, n)
	var last K
	hasLast := false
	for len(result) < n {
		var pick K
		found := false
		best := 0
		for _, k := range order {
			if hasLast && k == last {
				continue
			}
			if c := len(buckets[k]); c > best {
				best = c
				pick = k
				found = true
			}
		}
		if !found {
			pick = last
		}

		result = append(result, buckets[pick][0])
		buckets[pick] = buckets[pick][1:]
		last = pick
		hasLast = true
	}
	return result
}
