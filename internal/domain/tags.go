package domain

import "sort"

// TagCount is a tag with its occurrence count.
type TagCount struct {
	Tag   string
	Count int
}

// CountTags counts tag occurrences across docs and returns them sorted by
// descending count. Ties keep first-seen order.
func CountTags(docs []Document) []TagCount {
	index := make(map[string]int)
	var counts []TagCount

	for _, doc := range docs {
		for _, tag := range doc.Tags() {
			if i, ok := index[tag]; ok {
				counts[i].Count++
				continue
			}
			index[tag] = len(counts)
			counts = append(counts, TagCount{Tag: tag, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

// TopTags returns the names of the n most frequent tags.
func TopTags(docs []Document, n int) []string {
	counts := CountTags(docs)
	if len(counts) > n {
		counts = counts[:n]
	}
	names := make([]string, len(counts))
	for i, c := range counts {
		names[i] = c.Tag
	}
	return names
}
