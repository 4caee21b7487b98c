package renderer

// Band is a contiguous run of image rows rendered by one worker
type Band struct {
	Index    int // Position in the frame, also the seed offset
	StartRow int // First row, inclusive
	EndRow   int // Last row, exclusive
}

// Rows returns the number of rows in the band
func (b Band) Rows() int {
	return b.EndRow - b.StartRow
}

// Bands splits height rows into n contiguous bands. Remainder rows are spread
// across the bands so sizes differ by at most one; when n > height some bands
// are empty.
func Bands(height, n int) []Band {
	if n <= 0 {
		return nil
	}
	bands := make([]Band, n)
	for i := range bands {
		bands[i] = Band{
			Index:    i,
			StartRow: height * i / n,
			EndRow:   height * (i + 1) / n,
		}
	}
	return bands
}
