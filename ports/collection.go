package ports

import "github.com/pkg/errors"

// A Collection groups ports and supports lookup by index or by
// configuration-assigned alias.
type Collection struct {
	ports   []*Port
	byIndex map[int]*Port
	byName  map[string]*Port
}

// NewCollection wraps ports, which stay in the given order.
func NewCollection(ports []*Port) *Collection {
	c := &Collection{
		ports:   ports,
		byIndex: make(map[int]*Port, len(ports)),
		byName:  map[string]*Port{},
	}
	for _, p := range ports {
		c.byIndex[p.Index()] = p
	}
	return c
}

// SetAlias names the port with the given 1-based index.
func (c *Collection) SetAlias(name string, idx int) error {
	p, ok := c.byIndex[idx]
	if !ok {
		return errors.Errorf("no port %d to alias as %q", idx, name)
	}
	c.byName[name] = p
	return nil
}

// ByIndex returns the port with the given 1-based index.
func (c *Collection) ByIndex(idx int) (*Port, error) {
	p, ok := c.byIndex[idx]
	if !ok {
		return nil, errors.Errorf("no port %d", idx)
	}
	return p, nil
}

// ByName returns the port aliased to name.
func (c *Collection) ByName(name string) (*Port, error) {
	p, ok := c.byName[name]
	if !ok {
		return nil, errors.Errorf("no port named %q", name)
	}
	return p, nil
}

// All returns the collection's ports in order.
func (c *Collection) All() []*Port {
	out := make([]*Port, len(c.ports))
	copy(out, c.ports)
	return out
}
