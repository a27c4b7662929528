package score

// Attr is a single element attribute. Attributes keep document order
// so serialization is deterministic.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the notation tree.
//
// Visibility is an explicit tri-state: visible (default), hidden, or
// locked. A locked node keeps its current visibility forever; SetVisible
// and SetInvisible become no-ops. Measure nodes are born locked.
type Element struct {
	tag      string
	attrs    []Attr
	text     string
	children []*Element

	hidden bool
	locked bool
}

// New creates an element with the given tag. "Measure" elements are
// visibility-locked from construction.
func New(tag string) *Element {
	return &Element{tag: tag, locked: tag == "Measure"}
}

// NewElement creates an element with tag, optional text and an initial
// visibility state.
func NewElement(tag, text string, visible bool) *Element {
	e := New(tag)
	e.text = text
	if !visible {
		e.SetInvisible()
	}
	return e
}

// Tag returns the element's tag.
func (e *Element) Tag() string { return e.tag }

// Text returns the element's text content ("" for non-leaf nodes).
func (e *Element) Text() string { return e.text }

// SetText sets the element's text content.
func (e *Element) SetText(text string) { e.text = text }

// Children returns the ordered child list. The slice is owned by the
// element; callers must not retain it across mutations.
func (e *Element) Children() []*Element { return e.children }

// Attrs returns the ordered attribute list.
func (e *Element) Attrs() []Attr { return e.attrs }

// Attr returns the named attribute value and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or replaces the named attribute.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
}

// Append adds a child to the end of the child list.
func (e *Element) Append(child *Element) {
	e.children = append(e.children, child)
}

// AppendNew creates a child with tag, text and visibility and appends it.
func (e *Element) AppendNew(tag, text string, visible bool) *Element {
	child := NewElement(tag, text, visible)
	e.Append(child)
	return child
}

// Find returns the first direct child with the given tag, or nil.
func (e *Element) Find(tag string) *Element {
	for _, c := range e.children {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

// Contains reports whether a direct child with the given tag exists.
func (e *Element) Contains(tag string) bool { return e.Find(tag) != nil }

// Walk visits the element and all descendants depth-first in document
// order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.children {
		c.Walk(fn)
	}
}

// WalkTag visits the element and all descendants whose tag matches.
// An empty tag matches every node.
func (e *Element) WalkTag(tag string, fn func(*Element)) {
	if tag == "" || e.tag == tag {
		fn(e)
	}
	for _, c := range e.children {
		c.WalkTag(tag, fn)
	}
}

// Clone returns an independent deep copy of the subtree, including
// visibility state and locks.
func (e *Element) Clone() *Element {
	cp := &Element{
		tag:    e.tag,
		text:   e.text,
		hidden: e.hidden,
		locked: e.locked,
	}
	if len(e.attrs) > 0 {
		cp.attrs = make([]Attr, len(e.attrs))
		copy(cp.attrs, e.attrs)
	}
	if len(e.children) > 0 {
		cp.children = make([]*Element, len(e.children))
		for i, c := range e.children {
			cp.children[i] = c.Clone()
		}
	}
	return cp
}

// Visible reports whether the element is currently visible.
func (e *Element) Visible() bool { return !e.hidden }

// Locked reports whether the element's visibility is permanently locked.
func (e *Element) Locked() bool { return e.locked }

// LockVisibility freezes the element's current visibility. Irreversible.
func (e *Element) LockVisibility() { e.locked = true }

// SetVisible makes the element visible. No-op when locked.
func (e *Element) SetVisible() {
	if e.locked {
		return
	}
	e.hidden = false
}

// SetInvisible hides the element. No-op when locked.
func (e *Element) SetInvisible() {
	if e.locked {
		return
	}
	e.hidden = true
}

// SetVisibleAll recursively makes the subtree visible. A non-empty tag
// restricts the operation to matching nodes; nodes in except are left
// untouched.
func (e *Element) SetVisibleAll(tag string, except map[*Element]bool) {
	e.WalkTag(tag, func(el *Element) {
		if except != nil && except[el] {
			return
		}
		el.SetVisible()
	})
}

// SetInvisibleAll recursively hides the subtree. A non-empty tag
// restricts the operation to matching nodes.
func (e *Element) SetInvisibleAll(tag string) {
	e.WalkTag(tag, func(el *Element) {
		el.SetInvisible()
	})
}
