package disc

// Matrix maps an ordered pair of primary styles to a compatibility score in
// [0,100]. Both orderings of a pair are stored explicitly.
type Matrix [4][4]int

// DefaultMatrix is the reference compatibility table. Rows and columns follow
// the canonical D, I, S, C order.
var DefaultMatrix = Matrix{
	//  D   I   S   C
	{50, 75, 60, 85}, // D
	{75, 70, 90, 55}, // I
	{60, 90, 80, 85}, // S
	{85, 55, 85, 70}, // C
}

// Score looks up the compatibility of a and b. Both styles must be valid;
// unknown styles score 0.
func (m Matrix) Score(a, b Style) int {
	i, j := a.Index(), b.Index()
	if i < 0 || j < 0 {
		return 0
	}
	return m[i][j]
}
