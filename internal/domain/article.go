package domain

// cleanArticles keeps the fixed article fields plus the optional passthrough
// fields (description, content, authors, language). Entries that are not
// objects are skipped.
func cleanArticles(v any) []Article {
	items, ok := v.([]any)
	if !ok {
		return []Article{}
	}
	out := make([]Article, 0, len(items))
	for _, item := range items {
		m, ok := asObject(item)
		if !ok {
			continue
		}
		a := Article{
			ID:            textField(m, "id"),
			Title:         textField(m, "title"),
			Link:          textField(m, "link"),
			Media:         textField(m, "media"),
			PublishedDate: textField(m, "published_date"),
			NameSource:    textField(m, "name_source"),
			Description:   textField(m, "description"),
			Content:       textField(m, "content"),
			Language:      textField(m, "language"),
		}
		if authors, ok := m["authors"]; ok && authors != nil {
			a.Authors = stringList(authors)
		}
		out = append(out, a)
	}
	return out
}
