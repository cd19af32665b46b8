package explore

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/oda-hub/deprecated-renku-aqs/internal/config"
)

// Layout is the whole-canvas force layout
type Layout string

const (
	LayoutRepulsion    Layout = "repulsion"
	LayoutHierarchical Layout = "hierarchicalRepulsion"
)

// Errors returned by session transitions
var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrNotClickable  = errors.New("node is not clickable")
	ErrUnknownSubset = errors.New("unknown subset")
	ErrUnknownType   = errors.New("no reduction configured for type")
	ErrUnknownLayout = errors.New("unknown layout")
	ErrUnknownConfig = errors.New("unknown graphical configuration")
)

// Node is a node as currently shown
type Node struct {
	NodeData
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Expanded  bool    `json:"expanded"`
	Hidden    bool    `json:"hidden"`
	Physics   bool    `json:"physics"`
	Clickable bool    `json:"clickable"`
	Styled    bool    `json:"styled"`
	Backbone  bool    `json:"backbone"`

	filtered bool // hidden by a subset filter
	pending  bool // added by an expansion not yet finished
}

// Edge is an edge as currently shown
type Edge struct {
	EdgeData
	ID     string `json:"id"`
	Styled bool   `json:"styled"`
}

// absorption records one child folded into its parent's label
type absorption struct {
	parent      string
	parentLabel string // label before the first absorption
	child       Node
	edge        Edge
	collapsed   bool // made while the parent was collapsed
}

// View is the full visible state returned after every transition
type View struct {
	Nodes            []Node   `json:"nodes"`
	Edges            []Edge   `json:"edges"`
	Layout           Layout   `json:"layout"`
	ActiveReductions []string `json:"active_reductions"`
	DisabledSubsets  []string `json:"disabled_subsets"`
	DisabledConfigs  []string `json:"disabled_configs"`
}

// Session is the exploration state of one page. Every transition holds the
// session lock for its whole duration, so two clicks never interleave.
type Session struct {
	mu     sync.Mutex
	store  Store
	bundle *config.Bundle

	nodes      map[string]*Node
	edges      map[string]*Edge
	original   map[string]string // label before expansion
	absorbed   []absorption
	reductions map[string]bool
	subsetsOff map[string]bool
	configsOff map[string]bool
	layout     Layout
	steps      []string
}

// NewSession loads the backbone from store
func NewSession(store Store, bundle *config.Bundle) *Session {
	s := &Session{
		store:      store,
		bundle:     bundle,
		nodes:      make(map[string]*Node),
		edges:      make(map[string]*Edge),
		original:   make(map[string]string),
		reductions: make(map[string]bool),
		subsetsOff: make(map[string]bool),
		configsOff: make(map[string]bool),
		layout:     LayoutRepulsion,
	}
	s.load()
	return s
}

func (s *Session) load() {
	nodes, edges := s.store.Backbone()
	for i, d := range nodes {
		n := s.materialize(d, float64(i)*150, 0)
		n.Backbone = true
	}
	for _, e := range edges {
		s.addEdge(e)
	}
	s.applyFilters()
	s.applyLayout()
	s.log("load")
}

// Reset drops every expansion and absorption and reloads the backbone. Active
// filters, reductions, configurations and the layout are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node)
	s.edges = make(map[string]*Edge)
	s.original = make(map[string]string)
	s.absorbed = nil
	s.load()
}

func (s *Session) log(step string) { s.steps = append(s.steps, step) }

// Steps returns every step performed so far, in order
func (s *Session) Steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.steps...)
}

func (s *Session) nodeConfig(typ string) (config.ElementConfig, bool) {
	if s.bundle == nil {
		return config.ElementConfig{}, false
	}
	c, ok := s.bundle.Graphical.Nodes[typ]
	return c, ok
}

func (s *Session) edgeConfig(label string) (config.ElementConfig, bool) {
	if s.bundle == nil {
		return config.ElementConfig{}, false
	}
	c, ok := s.bundle.Graphical.Edges[label]
	return c, ok
}

// materialize adds a node at (x, y) or returns the existing one
func (s *Session) materialize(d NodeData, x, y float64) *Node {
	if n, ok := s.nodes[d.ID]; ok {
		return n
	}
	cfg, ok := s.nodeConfig(d.Type)
	n := &Node{
		NodeData:  d,
		X:         x,
		Y:         y,
		Clickable: ok && cfg.Clickable,
		Styled:    ok && !s.configsOff[cfg.ConfigFile],
	}
	s.nodes[d.ID] = n
	return n
}

func (s *Session) addEdge(d EdgeData) *Edge {
	id := d.Key()
	if e, ok := s.edges[id]; ok {
		return e
	}
	cfg, ok := s.edgeConfig(d.Label)
	e := &Edge{EdgeData: d, ID: id, Styled: ok && !s.configsOff[cfg.ConfigFile]}
	s.edges[id] = e
	return e
}

// Expand materializes a node's neighborhood, then applies filters, layout,
// reduction, reveals the new nodes and prunes dangling edges, in that order.
// Expanding an expanded node does nothing.
func (s *Session) Expand(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if !n.Clickable {
		return fmt.Errorf("%w: %s", ErrNotClickable, id)
	}
	if n.Expanded {
		return nil
	}

	nodes, edges := s.store.Neighborhood(id)
	s.log("expand:query")
	for _, d := range nodes {
		if _, exists := s.nodes[d.ID]; exists || s.absorbedBy(id, d.ID) {
			continue
		}
		child := s.materialize(d, n.X, n.Y)
		child.pending = true
	}
	for _, e := range edges {
		s.addEdge(e)
	}
	s.original[id] = n.Label
	n.Label = expandedLabel(n.NodeData)
	n.Expanded = true

	s.applyFilters()
	s.log("expand:filter")
	s.applyLayout()
	s.log("expand:layout")
	if s.reductions[n.Type] {
		s.absorbInto(n)
	}
	s.log("expand:reduce")
	for _, node := range s.nodes {
		node.pending = false
	}
	s.refreshHidden()
	s.log("expand:reveal")
	s.pruneDangling()
	s.log("expand:prune")
	return nil
}

// expandedLabel adds every literal not already part of the label
func expandedLabel(d NodeData) string {
	label := d.Label
	for _, l := range d.Literals {
		if !strings.Contains(label, l.Value) {
			label += "\n" + l.Predicate + ": " + l.Value
		}
	}
	return label
}

// Collapse removes every non-backbone neighbor with no other surviving edge
// and restores the pre-expansion label
func (s *Session) Collapse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if !n.Expanded {
		return nil
	}

	for _, other := range s.neighbors(id) {
		child := s.nodes[other]
		if child == nil || child.Backbone {
			continue
		}
		if s.degreeExcluding(other, id) > 0 {
			continue
		}
		s.removeNode(other)
	}
	s.log("collapse:remove")

	kept := s.absorbed[:0]
	for _, a := range s.absorbed {
		if a.parent != id || a.collapsed {
			kept = append(kept, a)
		}
	}
	s.absorbed = kept

	n.Label = s.original[id]
	delete(s.original, id)
	n.Expanded = false
	s.pruneDangling()
	s.log("collapse:restore")
	return nil
}

// ToggleReduction enables or disables absorption for a node type
func (s *Session) ToggleReduction(typ string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	if _, ok := s.bundle.Reductions[typ]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, typ)
	}
	if enabled == s.reductions[typ] {
		return nil
	}
	s.reductions[typ] = enabled

	if enabled {
		for _, id := range s.sortedNodeIDs() {
			n := s.nodes[id]
			if n != nil && n.Type == typ && !n.Hidden {
				s.absorbInto(n)
			}
		}
		s.pruneDangling()
		s.log("reduction:absorb")
		return nil
	}

	kept := s.absorbed[:0]
	restored := make(map[string]bool)
	for _, a := range s.absorbed {
		parent := s.nodes[a.parent]
		if parent == nil || parent.Type != typ {
			kept = append(kept, a)
			continue
		}
		if !restored[a.parent] {
			parent.Label = a.parentLabel
			if parent.Expanded && a.collapsed {
				s.original[a.parent] = a.parentLabel
				parent.Label = expandedLabel(parent.NodeData)
			}
			restored[a.parent] = true
		}
		child := a.child
		s.nodes[child.ID] = &child
		e := a.edge
		s.edges[e.ID] = &e
	}
	s.absorbed = kept
	s.applyFilters()
	s.refreshHidden()
	s.log("reduction:restore")
	return nil
}

// absorbInto folds each neighbor reached through a configured predicate into
// n's label, when that neighbor has no other surviving edge
func (s *Session) absorbInto(n *Node) {
	red, ok := s.bundle.Reductions[n.Type]
	if !ok {
		return
	}
	preds := make(map[string]bool, len(red.PredicatesToAbsorb))
	for _, p := range red.PredicatesToAbsorb {
		preds[s.bundle.Expand(p)] = true
	}
	for _, eid := range s.sortedEdgeIDs() {
		e := s.edges[eid]
		if e == nil || !preds[e.Predicate] {
			continue
		}
		var other string
		switch n.ID {
		case e.From:
			other = e.To
		case e.To:
			other = e.From
		default:
			continue
		}
		child := s.nodes[other]
		if child == nil || child.Backbone || s.isAbsorbed(n.ID, other, e.ID) {
			continue
		}
		if s.degreeExcluding(other, n.ID) > 0 {
			continue
		}
		base := n.Label
		for _, a := range s.absorbed {
			if a.parent == n.ID {
				base = a.parentLabel
				break
			}
		}
		saved := *child
		saved.pending = false
		s.absorbed = append(s.absorbed, absorption{
			parent:      n.ID,
			parentLabel: base,
			child:       saved,
			edge:        *e,
			collapsed:   !n.Expanded,
		})
		n.Label += "\n" + strings.ReplaceAll(child.Label, "\n", " ")
		delete(s.nodes, other)
		delete(s.edges, e.ID)
	}
}

func (s *Session) absorbedBy(parent, child string) bool {
	for _, a := range s.absorbed {
		if a.parent == parent && a.child.ID == child {
			return true
		}
	}
	return false
}

func (s *Session) isAbsorbed(parent, child, edge string) bool {
	for _, a := range s.absorbed {
		if a.parent == parent && a.child.ID == child && a.edge.ID == edge {
			return true
		}
	}
	return false
}

// ToggleSubset shows or hides every node whose prefix belongs to the subset.
// Nothing is deleted.
func (s *Session) ToggleSubset(subset string, visible bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSubset, subset)
	}
	if _, ok := s.bundle.Subsets[subset]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSubset, subset)
	}
	if visible {
		delete(s.subsetsOff, subset)
	} else {
		s.subsetsOff[subset] = true
	}
	s.applyFilters()
	s.refreshHidden()
	s.applyLayout()
	s.log("subset:filter")
	return nil
}

// ToggleGraphConfig switches every node and edge styled by the named
// document between its style and the default style. Visibility is unchanged.
func (s *Session) ToggleGraphConfig(name string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bundle == nil || !contains(s.bundle.ConfigNames(), name) {
		return fmt.Errorf("%w: %s", ErrUnknownConfig, name)
	}
	if enabled {
		delete(s.configsOff, name)
	} else {
		s.configsOff[name] = true
	}
	for _, n := range s.nodes {
		if cfg, ok := s.nodeConfig(n.Type); ok && cfg.ConfigFile == name {
			n.Styled = enabled
		}
	}
	for _, e := range s.edges {
		if cfg, ok := s.edgeConfig(e.Label); ok && cfg.ConfigFile == name {
			e.Styled = enabled
		}
	}
	s.log("config:style")
	return nil
}

// SetLayout switches the canvas layout. Purely cosmetic.
func (s *Session) SetLayout(l Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l != LayoutRepulsion && l != LayoutHierarchical {
		return fmt.Errorf("%w: %s", ErrUnknownLayout, l)
	}
	s.layout = l
	s.log("layout:" + string(l))
	return nil
}

// View returns a copy of the visible state, sorted by id
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{Layout: s.layout}
	for _, id := range s.sortedNodeIDs() {
		v.Nodes = append(v.Nodes, *s.nodes[id])
	}
	for _, id := range s.sortedEdgeIDs() {
		v.Edges = append(v.Edges, *s.edges[id])
	}
	v.ActiveReductions = sortedKeys(s.reductions, true)
	v.DisabledSubsets = sortedKeys(s.subsetsOff, true)
	v.DisabledConfigs = sortedKeys(s.configsOff, true)
	return v
}

// applyFilters marks nodes matching a disabled subset
func (s *Session) applyFilters() {
	off := make(map[string]bool)
	for id := range s.subsetsOff {
		for _, p := range s.bundle.Subsets[id].Prefixes {
			off[p] = true
		}
	}
	for _, n := range s.nodes {
		n.filtered = n.Prefix != "" && off[n.Prefix]
	}
	s.refreshHidden()
}

func (s *Session) refreshHidden() {
	for _, n := range s.nodes {
		n.Hidden = n.filtered || n.pending
	}
}

// applyLayout keeps filtered nodes out of the physics simulation
func (s *Session) applyLayout() {
	for _, n := range s.nodes {
		n.Physics = !n.filtered
	}
}

func (s *Session) pruneDangling() {
	for id, e := range s.edges {
		if s.nodes[e.From] == nil || s.nodes[e.To] == nil {
			delete(s.edges, id)
		}
	}
}

func (s *Session) removeNode(id string) {
	delete(s.nodes, id)
	for eid, e := range s.edges {
		if e.From == id || e.To == id {
			delete(s.edges, eid)
		}
	}
}

// neighbors returns the ids connected to id by a current edge, sorted
func (s *Session) neighbors(id string) []string {
	seen := make(map[string]bool)
	for _, e := range s.edges {
		switch id {
		case e.From:
			seen[e.To] = true
		case e.To:
			seen[e.From] = true
		}
	}
	return sortedKeys(seen, true)
}

// degreeExcluding counts id's edges to nodes other than except
func (s *Session) degreeExcluding(id, except string) int {
	n := 0
	for _, e := range s.edges {
		if (e.From == id && e.To != except) || (e.To == id && e.From != except) {
			n++
		}
	}
	return n
}

func (s *Session) sortedNodeIDs() []string {
	ids := make([]string, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *Session) sortedEdgeIDs() []string {
	ids := make([]string, 0, len(s.edges))
	for id := range s.edges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]bool, want bool) []string {
	var out []string
	for k, v := range m {
		if v == want {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
