package player

// Ratio is the Ratcliff/Obershelp similarity 2*M/T, where M counts characters in
// matching blocks and T is the combined length. Two empty strings score 1.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(matchingCharacters(ra, rb)) / float64(total)
}

type span struct {
	alo, ahi, blo, bhi int
}

func matchingCharacters(a, b []rune) int {
	matched := 0
	queue := []span{{0, len(a), 0, len(b)}}
	for len(queue) > 0 {
		s := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		i, j, k := longestMatch(a, b, s)
		if k == 0 {
			continue
		}
		matched += k
		if s.alo < i && s.blo < j {
			queue = append(queue, span{s.alo, i, s.blo, j})
		}
		if i+k < s.ahi && j+k < s.bhi {
			queue = append(queue, span{i + k, s.ahi, j + k, s.bhi})
		}
	}
	return matched
}

// longestMatch finds the longest common block inside s. Among equally long blocks
// it keeps the one that ends first in a, then first in b.
func longestMatch(a, b []rune, s span) (int, int, int) {
	bestI, bestJ, bestK := s.alo, s.blo, 0
	prev := make(map[int]int)
	for i := s.alo; i < s.ahi; i++ {
		next := make(map[int]int)
		for j := s.blo; j < s.bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := prev[j-1] + 1
			next[j] = k
			if k > bestK {
				bestI, bestJ, bestK = i-k+1, j-k+1, k
			}
		}
		prev = next
	}
	return bestI, bestJ, bestK
}
