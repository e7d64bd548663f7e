package extrema

// neighborDeltas lists every offset in {-1,0,1}^nDims (origin excluded)
// whose number of non-zero components is at most connectivity. With
// connectivity 1 that is the face neighbours; with nDims it is the full
// 3^nDims-1 neighbourhood.
func neighborDeltas(nDims, connectivity int) [][]int {
	var out [][]int
	cur := make([]int, nDims)
	for i := range cur {
		cur[i] = -1
	}
	for {
		nonZero := 0
		for _, c := range cur {
			if c != 0 {
				nonZero++
			}
		}
		if nonZero > 0 && nonZero <= connectivity {
			out = append(out, append([]int(nil), cur...))
		}
		// odometer increment, axis 0 fastest
		axis := 0
		for ; axis < nDims; axis++ {
			cur[axis]++
			if cur[axis] <= 1 {
				break
			}
			cur[axis] = -1
		}
		if axis == nDims {
			return out
		}
	}
}

// neighbor writes coords+delta into dst and reports whether it is inside sizes.
func neighbor(coords, delta, sizes, dst []int) bool {
	for axis := range coords {
		c := coords[axis] + delta[axis]
		if c < 0 || c >= sizes[axis] {
			return false
		}
		dst[axis] = c
	}
	return true
}
