package services

import "sort"

// orderedCounter counts string keys while remembering the order in which
// keys were first incremented. Ties in MostCommon resolve to the key whose
// counter was incremented first, which keeps most-used-table selection
// deterministic across runs (a plain map would not).
type orderedCounter struct {
	counts map[string]int
	order  []string
}

func newOrderedCounter() *orderedCounter {
	return &orderedCounter{counts: make(map[string]int)}
}

// Increment adds one to key's count, registering it on first sight.
func (c *orderedCounter) Increment(key string) {
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// Len returns the number of distinct keys.
func (c *orderedCounter) Len() int {
	return len(c.order)
}

// Total returns the sum of all counts.
func (c *orderedCounter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// Top returns the key with the highest count; on equal counts the key first
// incremented wins. ok is false when the counter is empty.
func (c *orderedCounter) Top() (key string, count int, ok bool) {
	for _, k := range c.order {
		if c.counts[k] > count {
			key, count, ok = k, c.counts[k], true
		}
	}
	return key, count, ok
}

// keyCount is one (key, count) pair in MostCommon order.
type keyCount struct {
	Key   string
	Count int
}

// MostCommon returns all keys ordered by descending count, ties keeping
// first-increment order.
func (c *orderedCounter) MostCommon() []keyCount {
	pairs := make([]keyCount, 0, len(c.order))
	for _, k := range c.order {
		pairs = append(pairs, keyCount{Key: k, Count: c.counts[k]})
	}
	// Insertion order is the tiebreak, so the sort must be stable.
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Count > pairs[j].Count
	})
	return pairs
}
