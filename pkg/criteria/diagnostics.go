package criteria

// RequiredTests lists the diagnostic work-ups the text asks for, in phrasebook
// order. Within a group only the first matching test is reported, so a trial
// asking for a fresh biopsy is not also listed as accepting archival tissue.
func (e *Extractor) RequiredTests(text string) []string {
	if text == "" {
		return nil
	}
	lower := normalize(text)
	claimed := make(map[string]struct{})
	var tests []string
	for _, rule := range e.book.RequiredTests {
		if rule.Group != "" {
			if _, ok := claimed[rule.Group]; ok {
				continue
			}
		}
		if !containsAny(lower, rule.Phrases) {
			continue
		}
		if rule.Group != "" {
			claimed[rule.Group] = struct{}{}
		}
		tests = append(tests, rule.Name)
	}
	return tests
}
