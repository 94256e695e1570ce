package simulation

// PathMatrix holds simulated trajectories, one row per path. Each row has
// steps+1 entries; column 0 is the initial price for every row. The matrix
// is created fresh per Simulate call and owned by the caller afterwards.
type PathMatrix [][]float64

// NewPathMatrix allocates a (paths, steps+1) matrix with column 0 set to
// initialPrice. Rows share one backing slice to keep allocation flat.
func NewPathMatrix(paths, steps int, initialPrice float64) PathMatrix {
	cols := steps + 1
	backing := make([]float64, paths*cols)
	m := make(PathMatrix, paths)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
		m[i][0] = initialPrice
	}
	return m
}

// NumPaths returns the number of simulated trajectories.
func (m PathMatrix) NumPaths() int {
	return len(m)
}

// NumSteps returns the number of time steps (columns minus the initial one).
func (m PathMatrix) NumSteps() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0]) - 1
}

// FinalPrices returns the last column as a new slice.
func (m PathMatrix) FinalPrices() []float64 {
	finals := make([]float64, len(m))
	for i, row := range m {
		if len(row) > 0 {
			finals[i] = row[len(row)-1]
		}
	}
	return finals
}
