package preview

import "regexp"

// locatorRe matches embedded images whose destination is a session-local
// blob locator.
var locatorRe = regexp.MustCompile(`!\[([^\]]*)\]\((blob:[^)]+)\)`)

// ExtractLocators maps image labels to the blob locators they reference.
// When a label appears more than once the last occurrence wins.
func ExtractLocators(text string) map[string]string {
	out := make(map[string]string)
	for _, m := range locatorRe.FindAllStringSubmatch(text, -1) {
		out[m[1]] = m[2]
	}
	return out
}
