package tree

import "path/filepath"

// ChildState records what is known about a folder's subfolders. The
// three states are distinct on purpose: NoChildren folders get no
// expansion arrow at all, Unloaded folders get one that triggers a
// scan when first opened.
type ChildState uint8

const (
	// NoChildren marks a folder known to contain no visible subfolders.
	NoChildren ChildState = iota
	// Unloaded marks a folder with subfolders that have not been
	// scanned yet.
	Unloaded
	// Loaded marks a folder whose children are populated.
	Loaded
)

func (s ChildState) String() string {
	switch s {
	case NoChildren:
		return "none"
	case Unloaded:
		return "unloaded"
	case Loaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// Node is one folder in the library tree. Nodes are not safe for
// concurrent mutation; the Index serializes updates to them. Token is
// set on root nodes only and carries the sealed access grant the root
// was added with.
type Node struct {
	path     string
	token    []byte
	state    ChildState
	children []*Node
}

// New returns a node in the NoChildren state.
func New(path string) *Node {
	return &Node{path: path}
}

func (n *Node) Path() string { return n.path }

// Name is the display name, the last path element.
func (n *Node) Name() string { return filepath.Base(n.path) }

func (n *Node) State() ChildState { return n.state }

// Children is non-nil exactly when the state is Loaded, and a Loaded
// node always has at least one child.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) Token() []byte         { return n.token }
func (n *Node) SetToken(token []byte) { n.token = token }

// SetChildren installs a scan result. An empty result means the folder
// has no subfolders, so the node drops back to NoChildren rather than
// holding an empty Loaded list.
func (n *Node) SetChildren(children []*Node) {
	if len(children) == 0 {
		n.state = NoChildren
		n.children = nil
		return
	}
	n.state = Loaded
	n.children = children
}

// MarkUnloaded flags the node as expandable without scanning it.
func (n *Node) MarkUnloaded() {
	n.state = Unloaded
	n.children = nil
}

// Find walks the subtree rooted at n for the node with the given path.
// Returns nil when the path is not part of the loaded tree.
func Find(n *Node, path string) *Node {
	if n == nil {
		return nil
	}
	if n.path == path {
		return n
	}
	for _, child := range n.children {
		if found := Find(child, path); found != nil {
			return found
		}
	}
	return nil
}
