package view

// Gallery is the carousel position over a product's images.
type Gallery struct {
	Index int
	Size  int
}

// NewGallery starts a carousel of size images at the first one.
func NewGallery(size int) Gallery {
	if size < 0 {
		size = 0
	}
	return Gallery{Size: size}
}

// Next moves forward, wrapping to the first image.
func (g Gallery) Next() Gallery {
	if g.Size <= 0 {
		return g
	}
	g.Index = (g.Index + 1) % g.Size
	return g
}

// Prev moves backward, wrapping to the last image.
func (g Gallery) Prev() Gallery {
	if g.Size <= 0 {
		return g
	}
	g.Index = (g.Index - 1 + g.Size) % g.Size
	return g
}

// Select jumps to i when it is in range.
func (g Gallery) Select(i int) Gallery {
	if i >= 0 && i < g.Size {
		g.Index = i
	}
	return g
}
