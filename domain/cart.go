package domain

// Cart maps an encoded cart key to a quantity. Every key present holds a
// quantity of at least 1; entries that reach zero are removed, never stored.
type Cart map[string]int

func (c Cart) Empty() bool { return len(c) == 0 }

func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}
