package search

// Paginate returns page number n of items, where every page holds size
// items. Page numbers start at 1. Pages past the end are empty and a
// non-positive size yields an empty page with both flags cleared.
func Paginate(items []Result, n, size int) Page {
	page := Page{
		Number: n,
		Size:   size,
		Total:  uint64(len(items)),
		Items:  []Result{},
	}
	if size <= 0 || n < 1 {
		return page
	}

	page.HasPrevious = HasPrevious(n)
	page.HasNext = HasNext(uint64(len(items)), n, size)

	start := (n - 1) * size
	if start >= len(items) || start < 0 {
		return page
	}

	end := start + size
	if end > len(items) {
		end = len(items)
	}
	page.Items = append(page.Items, items[start:end]...)

	return page
}

// HasNext reports whether a page follows page n in a sequence of total items.
func HasNext(total uint64, n, size int) bool {
	if n < 1 || size <= 0 {
		return false
	}

	return uint64(n)*uint64(size) < total
}

// HasPrevious reports whether a page precedes page n.
func HasPrevious(n int) bool { return n > 1 }
