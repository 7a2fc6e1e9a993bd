package models

// TypeSet is an insertion-ordered set of type descriptors. A type is stored
// once no matter how many functions reference it, and types living under a
// filtered namespace root are rejected.
type TypeSet struct {
	order    []TypeDescriptor
	index    map[TypeKey]int
	filtered map[string]bool
}

// NewTypeSet creates an empty set that filters the well-known namespaces
// plus any extra roots
func NewTypeSet(extraRoots ...string) *TypeSet {
	s := &TypeSet{
		index:    make(map[TypeKey]int),
		filtered: make(map[string]bool),
	}
	for _, root := range WellKnownNamespaces {
		s.filtered[root] = true
	}
	for _, root := range extraRoots {
		if root != "" {
			s.filtered[root] = true
		}
	}
	return s
}

// IsFiltered reports whether a type in namespace path ns is provided
// elsewhere and must not be declared
func (s *TypeSet) IsFiltered(ns []string) bool {
	return len(ns) > 0 && s.filtered[ns[0]]
}

// Add inserts t unless it is filtered or already present. It reports
// whether the set changed.
func (s *TypeSet) Add(t TypeDescriptor) bool {
	if s.IsFiltered(t.Namespace) {
		return false
	}
	key := t.Key()
	if _, exists := s.index[key]; exists {
		return false
	}
	s.index[key] = len(s.order)
	s.order = append(s.order, t)
	return true
}

// Contains reports whether a type with the given key is in the set
func (s *TypeSet) Contains(key TypeKey) bool {
	_, exists := s.index[key]
	return exists
}

// Merge adds every type of other, keeping other's order
func (s *TypeSet) Merge(other *TypeSet) {
	if other == nil {
		return
	}
	for _, t := range other.order {
		s.Add(t)
	}
}

// Len returns the number of types in the set
func (s *TypeSet) Len() int {
	return len(s.order)
}

// All returns the types in insertion order
func (s *TypeSet) All() []TypeDescriptor {
	result := make([]TypeDescriptor, len(s.order))
	copy(result, s.order)
	return result
}

// Collection is the result of collecting one or more translation units
type Collection struct {
	Functions []FunctionDescriptor
	Types     *TypeSet
	names     map[string]bool
}

// NewCollection creates an empty collection whose type set filters the
// well-known namespaces plus extraRoots
func NewCollection(extraRoots ...string) *Collection {
	return &Collection{
		Types: NewTypeSet(extraRoots...),
		names: make(map[string]bool),
	}
}

// HasFunction reports whether a function with the qualified name was collected
func (c *Collection) HasFunction(qualifiedName string) bool {
	return c.names[qualifiedName]
}

// AddFunction appends fd unless a function with the same qualified name is
// already present. It reports whether the collection changed.
func (c *Collection) AddFunction(fd FunctionDescriptor) bool {
	if c.names[fd.QualifiedName] {
		return false
	}
	c.names[fd.QualifiedName] = true
	c.Functions = append(c.Functions, fd)
	return true
}

// Merge appends the functions and types of other. Functions and types
// already present are kept in their first position.
func (c *Collection) Merge(other *Collection) {
	if other == nil {
		return
	}
	for _, fd := range other.Functions {
		c.AddFunction(fd)
	}
	c.Types.Merge(other.Types)
}
