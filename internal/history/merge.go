package history

// Merge produces the entry to persist for a visit to url with the given
// title. A nil existing entry starts a new record with one visit. Otherwise
// the visit count grows by one and a non-empty incoming title replaces the
// stored one; an empty incoming title never erases a stored title.
func Merge(existing *Entry, url, title string) Entry {
	if existing == nil {
		return Entry{
			URL:        url,
			Title:      title,
			VisitCount: 1,
		}
	}

	merged := *existing
	merged.URL = url
	merged.VisitCount++
	if title != "" {
		merged.Title = title
	}
	return merged
}
