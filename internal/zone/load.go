package zone

import (
	"os"
	"sort"

	"github.com/jthorne/dnsauthd/internal/dns"
)

// Zone is a parsed zone file: its origin name and the record tree
// rooted at that origin (though the tree itself is addressed from the
// DNS root, so it can be merged with other zones sharing ancestors).
type Zone struct {
	Origin dns.Name
	Tree   *Tree
}

// ParseText parses zone-file source text into a Zone.
func ParseText(text string) (*Zone, error) {
	p := newParser(text)
	tree, origin, err := p.parse()
	if err != nil {
		return nil, err
	}
	if !p.haveOrigin {
		return nil, &ParseError{Kind: ErrBadEntry, Msg: "zone file missing $ORIGIN"}
	}
	return &Zone{Origin: origin, Tree: tree}, nil
}

// LoadFile reads path and parses it as a zone file.
func LoadFile(path string) (*Zone, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseText(string(b))
}

// DiscoverZoneFiles returns the sorted, full paths of every regular
// file directly in dir (the configured zone directory; each file's
// $ORIGIN, not its filename, determines what it serves).
func DiscoverZoneFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, dir+string(os.PathSeparator)+e.Name())
	}
	sort.Strings(files)
	return files, nil
}

// LoadDir loads every zone file discovered in dir and merges their
// trees into one, so the resolver can serve multiple origins (and
// their delegations) from a single tree.
func LoadDir(dir string) (*Tree, error) {
	files, err := DiscoverZoneFiles(dir)
	if err != nil {
		return nil, err
	}
	tree := NewTree()
	for _, f := range files {
		z, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		tree.Merge(z.Tree)
	}
	return tree, nil
}
