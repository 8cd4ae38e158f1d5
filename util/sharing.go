package util

// CalcSharing splits x rows between n workers as evenly as possible.
// Workers that get an extra row come last, so strip offsets are monotonic.
func CalcSharing(x int, n int) []int {
	rowsEach := x / n
	nBigger := x - (rowsEach * n)
	var rows []int
	for i := 0; i < n-nBigger; i++ {
		rows = append(rows, rowsEach)
	}
	for i := 0; i < nBigger; i++ {
		rows = append(rows, rowsEach+1)
	}
	return rows
}
