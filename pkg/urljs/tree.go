package urljs

import (
	"strings"

	"github.com/urlgen-dev/urlgen/pkg/routes"
)

// NamespaceNode is one level of the generated object hierarchy. Children
// are named namespaces; groups collect the routes sharing one reversal
// name at this level, in registration order.
type NamespaceNode struct {
	Name    string
	AppName string

	children   map[string]*NamespaceNode
	childOrder []string

	groups     map[string][]boundRoute
	groupOrder []string
}

// boundRoute is a leaf route together with the include prefixes above it
// and the app scope it resolves placeholders in.
type boundRoute struct {
	route    *routes.Route
	prefixes []routes.Pattern
	appName  string
}

// Children returns the named child namespaces in first-seen order.
func (n *NamespaceNode) Children() []*NamespaceNode {
	out := make([]*NamespaceNode, 0, len(n.childOrder))
	for _, name := range n.childOrder {
		out = append(out, n.children[name])
	}
	return out
}

// GroupNames returns the reversal names at this level in first-seen order.
func (n *NamespaceNode) GroupNames() []string { return n.groupOrder }

func (n *NamespaceNode) child(name string) *NamespaceNode {
	if c, ok := n.children[name]; ok {
		return c
	}
	c := newNode(name)
	n.children[name] = c
	n.childOrder = append(n.childOrder, name)
	return c
}

func (n *NamespaceNode) addRoute(b boundRoute) {
	name := b.route.Name
	if _, ok := n.groups[name]; !ok {
		n.groupOrder = append(n.groupOrder, name)
	}
	n.groups[name] = append(n.groups[name], b)
}

func newNode(name string) *NamespaceNode {
	return &NamespaceNode{
		Name:     name,
		children: map[string]*NamespaceNode{},
		groups:   map[string][]boundRoute{},
	}
}

// BuildTree arranges a route table into the namespace hierarchy the
// writers walk. Include and exclude filter routes by qualified name;
// exclusion wins, and "ns:*" selects everything under a namespace.
// Namespaces left with no routes are pruned.
func BuildTree(entries []routes.Entry, include, exclude []string) *NamespaceNode {
	root := newNode("")
	addEntries(root, entries, "", nil, "", include, exclude)
	prune(root)
	return root
}

func addEntries(node *NamespaceNode, entries []routes.Entry, qualifier string, prefixes []routes.Pattern, appName string, include, exclude []string) {
	for _, e := range entries {
		switch v := e.(type) {
		case *routes.Route:
			if v.Name == "" {
				continue
			}
			if !selected(qualifier+v.Name, include, exclude) {
				continue
			}
			node.addRoute(boundRoute{route: v, prefixes: prefixes, appName: appName})

		case *routes.Include:
			nested := prefixes
			if v.Prefix != nil {
				nested = append(append([]routes.Pattern{}, prefixes...), v.Prefix)
			}
			if v.Namespace == "" {
				addEntries(node, v.Patterns, qualifier, nested, appName, include, exclude)
				continue
			}
			app := v.AppName
			if app == "" {
				app = v.Namespace
			}
			child := node.child(v.Namespace)
			child.AppName = app
			addEntries(child, v.Patterns, qualifier+v.Namespace+":", nested, app, include, exclude)
		}
	}
}

// selected applies the include and exclude filters to a qualified name.
func selected(qname string, include, exclude []string) bool {
	if matchFilter(qname, exclude) {
		return false
	}
	if len(include) == 0 {
		return true
	}
	return matchFilter(qname, include)
}

func matchFilter(qname string, filters []string) bool {
	for _, f := range filters {
		switch {
		case f == qname || f == "*":
			return true
		case strings.HasSuffix(f, ":*") && strings.HasPrefix(qname, f[:len(f)-1]):
			return true
		case strings.HasPrefix(qname, f+":"):
			// A bare namespace name covers its whole subtree.
			return true
		}
	}
	return false
}

// prune drops namespace nodes the filters emptied out.
func prune(n *NamespaceNode) {
	kept := n.childOrder[:0]
	for _, name := range n.childOrder {
		c := n.children[name]
		prune(c)
		if len(c.groupOrder) == 0 && len(c.childOrder) == 0 {
			delete(n.children, name)
			continue
		}
		kept = append(kept, name)
	}
	n.childOrder = kept
}
