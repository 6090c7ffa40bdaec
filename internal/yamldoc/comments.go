package yamldoc

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Comments collects every comment reachable from n: head, line, and foot
// comments of the node and all of its children. Collecting recursively means
// a duplicate check holds no matter whether an earlier run attached the
// comment to a key or to a list element.
func Comments(n *yaml.Node) []string {
	if n == nil {
		return nil
	}
	var out []string
	collectComments(n, &out)
	return out
}

func collectComments(n *yaml.Node, out *[]string) {
	for _, c := range []string{n.HeadComment, n.LineComment, n.FootComment} {
		if c != "" {
			*out = append(*out, c)
		}
	}
	for _, child := range n.Content {
		collectComments(child, out)
	}
}

// HasComment reports whether any collected comment contains substr.
func HasComment(comments []string, substr string) bool {
	for _, c := range comments {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

// AddCommentBeforeKey attaches a comment line above the key of a mapping
// field. Existing head comments are kept; the new line is appended below
// them.
func AddCommentBeforeKey(m *yaml.Node, key, comment string) {
	k := Key(m, key)
	if k == nil {
		return
	}
	k.HeadComment = joinComment(k.HeadComment, comment)
}

// AddCommentBeforeElem attaches a comment line above the idx-th element of a
// sequence.
func AddCommentBeforeElem(seq *yaml.Node, idx int, comment string) {
	if seq == nil || idx < 0 || idx >= len(seq.Content) {
		return
	}
	elem := seq.Content[idx]
	elem.HeadComment = joinComment(elem.HeadComment, comment)
}

// ElementComments returns all comments attached to the elements of a
// sequence node (not the sequence itself).
func ElementComments(seq *yaml.Node) []string {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	var out []string
	for _, elem := range seq.Content {
		collectComments(elem, &out)
	}
	return out
}

func joinComment(existing, comment string) string {
	if existing == "" {
		return comment
	}
	return existing + "\n" + comment
}
