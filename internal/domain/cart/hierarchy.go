package cart

// HierarchyResolver answers container/child queries over cart lines. The
// default implementation follows the ContainerLineID links that bundle and
// composite extensions set when they add lines; with no such extension
// present no line links anywhere and every query comes back empty.
type HierarchyResolver interface {
	// ContainerOf returns the line containing the given line, nil when the
	// line is not nested.
	ContainerOf(c *Cart, line *LineItem) *LineItem

	// ChildrenOf returns the lines nested inside the given line, in cart
	// order. Containers are not nested in practice, so one level suffices.
	ChildrenOf(c *Cart, line *LineItem) []*LineItem
}

// LinkedHierarchy resolves hierarchy from the ContainerLineID back-references.
type LinkedHierarchy struct{}

// NewLinkedHierarchy returns the default resolver
func NewLinkedHierarchy() *LinkedHierarchy {
	return &LinkedHierarchy{}
}

func (h *LinkedHierarchy) ContainerOf(c *Cart, line *LineItem) *LineItem {
	if line == nil || line.ContainerLineID == "" {
		return nil
	}
	container, _ := c.Line(line.ContainerLineID)
	return container
}

func (h *LinkedHierarchy) ChildrenOf(c *Cart, line *LineItem) []*LineItem {
	if line == nil {
		return nil
	}
	var children []*LineItem
	for _, li := range c.Lines {
		if li.ContainerLineID == line.ID {
			children = append(children, li)
		}
	}
	return children
}
