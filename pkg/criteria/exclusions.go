package criteria

// CommonExclusions reports a tri-state per known condition. Excluded phrases are
// looked up in the exclusion section, or in the full text when the criteria have
// no exclusion section. Empty text yields an empty map: every condition unknown.
func (e *Extractor) CommonExclusions(text string) ExclusionFlags {
	flags := make(ExclusionFlags, len(e.book.Exclusions))
	if text == "" {
		return flags
	}

	full := normalize(text)
	scope := full
	if _, exclusion, _ := splitSections(text); exclusion != "" {
		scope = normalize(exclusion)
	}

	for _, rule := range e.book.Exclusions {
		flags[rule.Condition] = evaluateExclusion(rule, full, scope)
	}
	return flags
}

func evaluateExclusion(rule ExclusionRule, full, scope string) TriState {
	if rule.AllowedFirst && containsAny(full, rule.Allowed) {
		return FlagAllowed
	}
	if containsAny(scope, rule.Excluded) {
		return FlagExcluded
	}
	if containsAny(full, rule.Allowed) {
		return FlagAllowed
	}
	def, _ := parseTriState(rule.Default)
	return def
}
