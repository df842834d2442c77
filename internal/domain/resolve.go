package domain

// strategy is one step in a resolution chain. It reports ok=false when it has
// nothing to offer so the next step can run.
type strategy func() (string, bool)

// firstOf runs strategies in order and returns the first result. It returns
// the empty string when every strategy declines.
func firstOf(strategies ...strategy) string {
	for _, s := range strategies {
		if v, ok := s(); ok {
			return v
		}
	}
	return ""
}

// nameByCode resolves a display name through the country reference.
func nameByCode(ref *CountryReference, code string) strategy {
	return func() (string, bool) {
		if code == "" {
			return "", false
		}
		return ref.ResolveName(code)
	}
}

// codeByName resolves an alpha-2 code from a display name.
func codeByName(ref *CountryReference, name string) strategy {
	return func() (string, bool) {
		return ref.ResolveCode(name)
	}
}

// atPosition takes the i-th element of a parallel list.
func atPosition(values []string, i int) strategy {
	return func() (string, bool) {
		if i < 0 || i >= len(values) || values[i] == "" {
			return "", false
		}
		return values[i], true
	}
}

// literal offers s itself when it is non-empty.
func literal(s string) strategy {
	return func() (string, bool) {
		return s, s != ""
	}
}

// when guards a strategy behind a condition.
func when(cond bool, s strategy) strategy {
	return func() (string, bool) {
		if !cond {
			return "", false
		}
		return s()
	}
}
