package tree

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// DefaultDepth keeps initial scans shallow: the root's children and
// grandchildren, with a probe one level further.
const DefaultDepth = 2

// Scanner builds shallow folder trees. Depth bounds how far a scan
// descends; nodes at the boundary get a cheap probe that records
// whether more levels exist without reading them. Hidden folders and
// folders matching the ignore patterns are skipped. Siblings sort
// case-insensitively in the scanner's locale.
type Scanner struct {
	depth  int
	locale language.Tag
	ignore *IgnoreMatcher
}

var _ FolderScanner = (*Scanner)(nil)

// NewScanner parses locale as a BCP 47 tag; an empty or invalid tag
// falls back to locale-neutral ordering. ignore holds glob patterns
// for folder names to leave out of the tree.
func NewScanner(depth int, locale string, ignore ...string) *Scanner {
	if depth < 1 {
		depth = DefaultDepth
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.Und
	}
	return &Scanner{depth: depth, locale: tag, ignore: NewIgnoreMatcher(ignore)}
}

// Scan builds the tree under root, breadth-first, down to the
// scanner's depth. A folder that cannot be read scans as having no
// subfolders.
func (s *Scanner) Scan(root string) *Node {
	// Collators are stateful, so each scan gets its own.
	coll := collate.New(s.locale, collate.IgnoreCase)

	type item struct {
		node  *Node
		level int
	}
	node := New(root)
	queue := []item{{node, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.level == s.depth {
			if s.hasSubfolder(cur.node.path) {
				cur.node.MarkUnloaded()
			}
			continue
		}
		names := s.subfolders(cur.node.path)
		if len(names) == 0 {
			continue
		}
		sortFolders(coll, names)
		children := make([]*Node, len(names))
		for i, name := range names {
			children[i] = New(filepath.Join(cur.node.path, name))
			queue = append(queue, item{children[i], cur.level + 1})
		}
		cur.node.SetChildren(children)
	}
	return node
}

// subfolders returns the visible subfolder names of path, in readdir
// order. Unreadable directories list as empty.
func (s *Scanner) subfolders(path string) []string {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !s.skip(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	return names
}

// hasSubfolder probes for at least one visible subfolder without
// listing the whole directory.
func (s *Scanner) hasSubfolder(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	for {
		entries, err := f.ReadDir(64)
		for _, entry := range entries {
			if entry.IsDir() && !s.skip(entry.Name()) {
				return true
			}
		}
		if err != nil {
			return false
		}
	}
}

func (s *Scanner) skip(name string) bool {
	return strings.HasPrefix(name, ".") || s.ignore.Match(name)
}

// sortFolders orders names case-insensitively for display. Names equal
// under the collation keep their readdir order.
func sortFolders(coll *collate.Collator, names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return coll.CompareString(names[i], names[j]) < 0
	})
}
