package grid

import (
	errs "github.com/matzehuels/tilegrid/pkg/errors"
)

// createNode allocates a node of kind under parent from desc and registers it
// together with every descendant desc declares. The subtree's changes are
// folded into commit; building the root completes the commit immediately,
// since nothing observes the tree yet.
func (t *Tree) createNode(kind Kind, parent Child, desc Description, commit *Commit) (Child, error) {
	weight := desc.Weight
	if parent == nil || parent.Kind() == KindTile {
		weight = 100
	}
	parentID := ""
	if parent != nil {
		parentID = parent.ID()
	}

	if kind == KindGrid {
		id := t.ids.NextGridID()
		g := &Grid{
			node: node{
				tree:     t,
				id:       id.ID,
				index:    id.Index,
				kind:     KindGrid,
				parentID: parentID,
				weight:   weight,
				title:    desc.Title,
			},
			direction: desc.Direction,
		}
		if err := t.register(g); err != nil {
			return nil, err
		}
		if len(desc.Children) > 0 {
			c, err := t.materializeChildren(g, desc.Children, commit)
			if err != nil {
				return nil, err
			}
			if parent == nil {
				c.Commit()
			}
		}
		return g, nil
	}

	id := t.ids.NextTileID()
	declared := desc.Constraints.clone()
	tile := &Tile{
		node: node{
			tree:     t,
			id:       id.ID,
			index:    id.Index,
			kind:     KindTile,
			parentID: parentID,
			weight:   weight,
			title:    desc.Title,
		},
		componentID: desc.ComponentID,
		activeTab:   desc.ActiveTab,
		declared:    declared,
		constraints: tileConstraints(t.cfg.Defaults.Constraints, declared),
	}
	if err := t.register(tile); err != nil {
		return nil, err
	}
	if _, ok := parent.(*Grid); ok && tile.componentID == "" && len(desc.Tabs) > 0 {
		if _, err := t.materializeTabs(tile, desc.Tabs, commit); err != nil {
			return nil, err
		}
	}
	return tile, nil
}

// materializeChildren builds descs as the children of g, spreading the weight
// the descriptions leave undeclared.
func (t *Tree) materializeChildren(g *Grid, descs []Description, commit *Commit) (*Commit, error) {
	commit = t.NewCommit(commit)
	weights := distributeWeights(descs)
	for i, d := range descs {
		d.Weight = weights[i]
		child, err := t.createNode(d.Kind(), g, d, commit)
		if err != nil {
			return commit, err
		}
		g.children = append(g.children, child)
	}
	commit.Changed(g)
	return commit, nil
}

// materializeTabs builds descs as the tabs of tile. Entries without a
// component id have nothing to show and are skipped.
func (t *Tree) materializeTabs(tile *Tile, descs []Description, commit *Commit) (*Commit, error) {
	commit = t.NewCommit(commit)
	for _, d := range descs {
		if d.ComponentID == "" {
			continue
		}
		if d.IsGrid() {
			return commit, errs.New(errs.ErrCodeInvalidDescription, "tab of %s must be a tile", tile.id)
		}
		d.Tabs = nil
		tab, err := t.createNode(KindTile, tile, d, commit)
		if err != nil {
			return commit, err
		}
		tile.tabs = append(tile.tabs, tab.(*Tile))
	}
	tile.activeTab = clampTab(tile.activeTab, len(tile.tabs))
	commit.Changed(tile)
	return commit, nil
}

func clampTab(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
