package dispatch

import "strings"

// ScrollStep is the magnitude of one scroll effect.
const ScrollStep = 500

type Route struct {
	Keyword string
	Path    string
}

// Routes is checked in order; the first keyword contained in a target wins.
var Routes = []Route{
	{Keyword: "home", Path: "/"},
	{Keyword: "project", Path: "/projects"},
	{Keyword: "contact", Path: "/contact"},
}

// ResolveRoute maps a free-form navigation target to a known path.
func ResolveRoute(target string) (string, bool) {
	normalized := strings.ToLower(target)
	for _, r := range Routes {
		if strings.Contains(normalized, r.Keyword) {
			return r.Path, true
		}
	}
	return "", false
}

// ScrollOffset is -ScrollStep for "up" and ScrollStep for anything else.
func ScrollOffset(direction string) int {
	if strings.EqualFold(strings.TrimSpace(direction), "up") {
		return -ScrollStep
	}
	return ScrollStep
}
