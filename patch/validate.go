package patch

// FilterAllowed splits ops into those whose path is in allowed and the rest.
// An empty allowed set admits everything.
func FilterAllowed(ops []Operation, allowed map[string]bool) (kept, dropped []Operation) {
	for _, op := range ops {
		if len(allowed) == 0 || allowed[op.Path] {
			kept = append(kept, op)
			continue
		}
		dropped = append(dropped, op)
	}
	return kept, dropped
}
