package grid

// Describe serializes the tree to its declarative form. Materializing the
// result with New yields an equivalent tree with fresh identities.
func (t *Tree) Describe() Description {
	return t.DescribeNode(t.root)
}

// DescribeNode serializes the subtree rooted at c.
func (t *Tree) DescribeNode(c Child) Description {
	switch v := c.(type) {
	case *Grid:
		d := Description{
			Direction: v.Direction(),
			Weight:    v.weight,
			Title:     v.title,
			Children:  make([]Description, 0, len(v.children)),
		}
		for _, ch := range v.children {
			d.Children = append(d.Children, t.DescribeNode(ch))
		}
		return d
	case *Tile:
		d := Description{
			Weight:      v.weight,
			ComponentID: v.componentID,
			Title:       v.title,
			Constraints: v.declared.clone(),
		}
		if tabs := v.Tabs(); len(tabs) > 0 {
			d.ActiveTab = v.activeTab
			for _, tab := range tabs {
				d.Tabs = append(d.Tabs, t.DescribeNode(tab))
			}
		}
		return d
	}
	return Description{}
}
