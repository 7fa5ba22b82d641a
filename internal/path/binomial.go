package path

import "sync"

// pascal holds rows of Pascal's triangle, grown on demand.
var pascal = struct {
	sync.Mutex
	rows [][]float64
}{rows: [][]float64{{1}}}

// Binomial returns C(n,k). It is 0 when k<0 or k>n.
func Binomial(n, k int) float64 {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	return row(n)[k]
}

func row(n int) []float64 {
	pascal.Lock()
	defer pascal.Unlock()
	for len(pascal.rows) <= n {
		prev := pascal.rows[len(pascal.rows)-1]
		next := make([]float64, len(prev)+1)
		next[0], next[len(prev)] = 1, 1
		for k := 1; k < len(prev); k++ {
			next[k] = prev[k-1] + prev[k]
		}
		pascal.rows = append(pascal.rows, next)
	}
	return pascal.rows[n]
}
