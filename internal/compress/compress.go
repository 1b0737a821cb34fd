package compress

// MaxPatternLen caps the period length tried at each position.
const MaxPatternLen = 50

// markerCost is the number of lines the RS/RE pair of a repeat costs.
const markerCost = 2

// Options tunes the encoder.
type Options struct {
	// MaxPatternLen caps the candidate period; <= 0 means MaxPatternLen.
	MaxPatternLen int
}

func (o Options) maxPatternLen() int {
	if o.MaxPatternLen <= 0 {
		return MaxPatternLen
	}
	return o.MaxPatternLen
}

// candidate is a period length and the number of back-to-back copies of
// the block of that length found at the current position.
type candidate struct {
	length, count int
}

func (c candidate) savings() int {
	return (c.count-1)*c.length - markerCost
}

// Compress encodes lines with the default options.
func Compress(lines []string) Stream {
	return CompressWith(lines, Options{})
}

// CompressWith encodes lines. It is total and deterministic: every input
// has exactly one encoding and Flatten returns the input unchanged.
func CompressWith(lines []string, opts Options) Stream {
	maxLen := opts.maxPatternLen()
	out := Stream{}

	for i := 0; i < len(lines); {
		limit := min(maxLen, (len(lines)-i)/2)
		candidates := make([]candidate, 0, limit)
		for l := 1; l <= limit; l++ {
			candidates = append(candidates, candidate{length: l, count: runLength(lines, i, l)})
		}

		best, ok := choose(candidates)
		if !ok {
			out = append(out, Literal(lines[i]))
			i++
			continue
		}
		body := CompressWith(lines[i:i+best.length], opts)
		out = append(out, Repeat(best.count, body))
		i += best.count * best.length
	}
	return out
}

// runLength counts how many consecutive copies of lines[i:i+l] start at i.
func runLength(lines []string, i, l int) int {
	count := 1
	for i+(count+1)*l <= len(lines) && equalBlocks(lines, i, i+count*l, l) {
		count++
	}
	return count
}

func equalBlocks(lines []string, a, b, l int) bool {
	for k := 0; k < l; k++ {
		if lines[a+k] != lines[b+k] {
			return false
		}
	}
	return true
}

// choose picks the candidate with the strictly greatest positive savings.
// Candidates are in increasing length order, so the first of equal
// candidates, the shortest period, is kept.
func choose(candidates []candidate) (candidate, bool) {
	var best candidate
	bestSavings := 0
	for _, c := range candidates {
		if s := c.savings(); s > bestSavings {
			best, bestSavings = c, s
		}
	}
	return best, bestSavings > 0
}
