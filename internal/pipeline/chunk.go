package pipeline

// Chunk splits items into consecutive groups of exactly size elements. Items
// that do not fill a final group are returned as the remainder so the caller
// can report them.
func Chunk[T any](items []T, size int) (groups [][]T, remainder []T) {
	if size <= 0 {
		return nil, items
	}
	full := len(items) / size * size
	for i := 0; i < full; i += size {
		groups = append(groups, items[i:i+size:i+size])
	}
	if full < len(items) {
		remainder = items[full:]
	}
	return groups, remainder
}
