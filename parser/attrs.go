package parser

// Attrs is an insertion-ordered string-to-string map holding exactly what
// a start/empty tag needs: preserved document order and a cheap
// duplicate-name check at insert time. The parser hands a Reader a
// read-only *Attrs for the duration of Start/Empty and reuses the backing
// arrays afterward, so callers that need to retain attributes must call
// Clone.
type Attrs struct {
	names  []string
	values map[string]string
}

func newAttrs() *Attrs {
	return &Attrs{values: make(map[string]string)}
}

// put inserts name=value. It reports false if name is already present,
// leaving the existing value untouched; the caller (the tag-assembly code
// in tag.go) is responsible for turning that into a DuplicateAttr error.
func (a *Attrs) put(name, value string) bool {
	if _, exists := a.values[name]; exists {
		return false
	}
	a.names = append(a.names, name)
	a.values[name] = value
	return true
}

func (a *Attrs) reset() {
	a.names = a.names[:0]
	for k := range a.values {
		delete(a.values, k)
	}
}

// Len returns the number of attributes.
func (a *Attrs) Len() int { return len(a.names) }

// Get returns the value of name and whether it was present.
func (a *Attrs) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Names returns the attribute names in the order they appeared in the
// source document. The returned slice aliases internal storage and must
// not be retained past the current callback.
func (a *Attrs) Names() []string { return a.names }

// Each calls fn for every attribute in document order.
func (a *Attrs) Each(fn func(name, value string)) {
	for _, n := range a.names {
		fn(n, a.values[n])
	}
}

// Clone returns an independent copy safe to retain after the callback
// returns.
func (a *Attrs) Clone() *Attrs {
	c := &Attrs{
		names:  append([]string(nil), a.names...),
		values: make(map[string]string, len(a.values)),
	}
	for k, v := range a.values {
		c.values[k] = v
	}
	return c
}
