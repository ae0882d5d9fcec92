package poh

// span is a half-open range of positions [lo, hi) checked by one worker.
type span struct {
	lo, hi int
}

// partition splits n positions into contiguous spans, one per worker, but
// never more than ceil(n/minSpan) of them. Spans differ in length by at most one.
func partition(n, workers, minSpan int) []span {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if minSpan < 1 {
		minSpan = 1
	}
	count := (n + minSpan - 1) / minSpan
	if count > workers {
		count = workers
	}

	spans := make([]span, count)
	size, rem := n/count, n%count
	lo := 0
	for i := range spans {
		hi := lo + size
		if i < rem {
			hi++
		}
		spans[i] = span{lo: lo, hi: hi}
		lo = hi
	}
	return spans
}
