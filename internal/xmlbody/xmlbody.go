package xmlbody

import (
	"github.com/clbanning/mxj/v2"

	"github.com/errshape/errshape/internal/search"
)

// XML error bodies tend to nest the useful text under an Error element
// before any of the generic containers, so Error heads the traversal
// list.
var traversalKeys = append([]string{"Error"}, search.NestingKeys...)

// Description pulls a human-readable message out of an XML error body.
// Parse failures are swallowed; the result is empty whenever the
// document yields nothing usable. mxj decodes leniently, keeping a
// single child element as a plain value instead of a one-element list,
// so the resulting tree searches exactly like a JSON payload.
func Description(xmlText string) string {
	if xmlText == "" {
		return ""
	}

	tree, err := mxj.NewMapXml([]byte(xmlText))
	if err != nil || len(tree) == 0 {
		return ""
	}

	// Valid XML has a single document element; its content is the
	// search root.
	var root any
	for _, value := range map[string]any(tree) {
		root = value
		break
	}

	return search.Find(root, search.MessageKeys, traversalKeys)
}
