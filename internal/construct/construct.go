// Package construct holds the ownership tree that declarative resources are
// attached to. Nodes are arena indices into a single Tree rather than
// objects holding parent pointers, so the tree stays a plain directed
// acyclic graph that can be walked and synthesized deterministically.
package construct

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidID means a construct identifier is malformed: empty, containing
// a path separator, or colliding with a sibling.
var ErrInvalidID = errors.New("invalid construct id")

// Node is a handle into a Tree. The zero Node is the root.
type Node int

// Root is the implicit top of every tree.
const Root Node = 0

// Resource is the template payload a node may carry. Nodes without a
// resource are pure scopes.
type Resource struct {
	Type       string
	Properties map[string]any
}

type node struct {
	id       string
	parent   Node
	children []Node
	resource *Resource
}

// Tree owns all construct nodes. It is not safe for concurrent mutation;
// construction is a single synchronous pass.
type Tree struct {
	nodes []node
}

// NewTree returns a tree containing only the root scope.
func NewTree() *Tree {
	return &Tree{nodes: []node{{id: ""}}}
}

// Child creates a new scope under parent. The id must be non-empty, must
// not contain '/', and must be unique among the parent's children.
func (t *Tree) Child(parent Node, id string) (Node, error) {
	if err := t.checkNode(parent); err != nil {
		return 0, err
	}
	if id == "" {
		return 0, fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	if strings.Contains(id, "/") {
		return 0, fmt.Errorf("%w: %q contains a path separator", ErrInvalidID, id)
	}
	for _, c := range t.nodes[parent].children {
		if t.nodes[c].id == id {
			return 0, fmt.Errorf("%w: %q already exists under %q", ErrInvalidID, id, t.Path(parent))
		}
	}

	n := Node(len(t.nodes))
	t.nodes = append(t.nodes, node{id: id, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, n)
	return n, nil
}

// Attach sets the template resource carried by a node. Attaching twice
// replaces the previous payload.
func (t *Tree) Attach(n Node, r Resource) error {
	if err := t.checkNode(n); err != nil {
		return err
	}
	if n == Root {
		return fmt.Errorf("%w: cannot attach a resource to the root scope", ErrInvalidID)
	}
	t.nodes[n].resource = &r
	return nil
}

// Resource returns the payload attached to a node, if any.
func (t *Tree) Resource(n Node) (Resource, bool) {
	if err := t.checkNode(n); err != nil {
		return Resource{}, false
	}
	if t.nodes[n].resource == nil {
		return Resource{}, false
	}
	return *t.nodes[n].resource, true
}

// Children returns the child handles of a node in creation order.
func (t *Tree) Children(n Node) []Node {
	if err := t.checkNode(n); err != nil {
		return nil
	}
	out := make([]Node, len(t.nodes[n].children))
	copy(out, t.nodes[n].children)
	return out
}

// Path returns the slash-joined ids from the root to the node.
func (t *Tree) Path(n Node) string {
	if n == Root {
		return ""
	}
	segments := t.segments(n)
	return strings.Join(segments, "/")
}

// LogicalID derives a stable template identifier for a node: the
// concatenated alphanumeric path segments followed by an 8 character hash
// of the full path. Two trees built the same way produce the same ids.
func (t *Tree) LogicalID(n Node) string {
	segments := t.segments(n)
	var human strings.Builder
	for _, s := range segments {
		for _, r := range s {
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				human.WriteRune(r)
			}
		}
	}
	id := human.String()
	if len(id) > 240 {
		id = id[:240]
	}
	sum := sha256.Sum256([]byte(strings.Join(segments, "/")))
	return id + strings.ToUpper(hex.EncodeToString(sum[:4]))
}

// Walk visits every node below the root in depth-first creation order.
func (t *Tree) Walk(visit func(Node)) {
	var rec func(Node)
	rec = func(n Node) {
		if n != Root {
			visit(n)
		}
		for _, c := range t.nodes[n].children {
			rec(c)
		}
	}
	rec(Root)
}

func (t *Tree) segments(n Node) []string {
	var segments []string
	for n != Root {
		segments = append(segments, t.nodes[n].id)
		n = t.nodes[n].parent
	}
	for i, j := 0, len(segments)-1; i < j; i, j = i+1, j-1 {
		segments[i], segments[j] = segments[j], segments[i]
	}
	return segments
}

func (t *Tree) checkNode(n Node) error {
	if n < 0 || int(n) >= len(t.nodes) {
		return fmt.Errorf("%w: node %d out of range", ErrInvalidID, n)
	}
	return nil
}
