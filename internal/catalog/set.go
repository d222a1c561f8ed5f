package catalog

import "storefront/internal/model"

// productSet collects products keyed by name, keeping first-seen order.
type productSet struct {
	index    map[string]int
	products []model.Product
}

func newProductSet(capacity int) *productSet {
	return &productSet{
		index:    make(map[string]int, capacity),
		products: make([]model.Product, 0, capacity),
	}
}

// Add inserts p, replacing any earlier product with the same name.
func (s *productSet) Add(p model.Product) {
	if i, ok := s.index[p.Name]; ok {
		s.products[i] = p
		return
	}
	s.index[p.Name] = len(s.products)
	s.products = append(s.products, p)
}

func (s *productSet) Size() int {
	return len(s.products)
}

func (s *productSet) Products() []model.Product {
	return s.products
}
