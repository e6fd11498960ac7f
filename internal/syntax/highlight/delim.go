package highlight

import (
	"github.com/dshills/parsedit/internal/syntax/parser"
	"github.com/dshills/parsedit/internal/syntax/pattern"
)

// Span is a half-open byte range [Start, End) on one row.
type Span struct {
	Start int
	End   int
}

// pairState is the state of the delimiter-pair scanner.
type pairState uint8

const (
	seekStart pairState = iota
	inStart
	seekEnd
	inEnd
)

// pairSpans returns every complete start...end span on the line. Scanning
// resumes right after each end delimiter, so spans may be back to back.
func pairSpans(t pattern.Text, pair *parser.DelimPair, fold bool) []Span {
	if pair == nil || len(pair.Start) == 0 || len(pair.End) == 0 {
		return nil
	}
	var (
		spans  []Span
		state  = seekStart
		k      int
		start  int
		endPos int
	)
	for i := 0; i < len(t); i++ {
		b := byte(t[i])
		switch state {
		case seekStart:
			if sameByte(b, pair.Start[0], fold) {
				start, k, state = i, 1, inStart
			}
		case inStart:
			if !sameByte(b, pair.Start[k], fold) {
				i, state = start, seekStart
				continue
			}
			k++
		case seekEnd:
			if sameByte(b, pair.End[0], fold) {
				endPos, k, state = i, 1, inEnd
			}
		case inEnd:
			if !sameByte(b, pair.End[k], fold) {
				i, state = endPos, seekEnd
				continue
			}
			k++
		}
		switch {
		case state == inStart && k == len(pair.Start):
			state = seekEnd
		case state == inEnd && k == len(pair.End):
			spans = append(spans, Span{Start: start, End: i + 1})
			state = seekStart
		}
	}
	return spans
}
