package ble

import (
	"fmt"
	"strconv"
	"strings"
)

// pillarIDBits bounds pillar IDs to the INTEGER column width.
const pillarIDBits = 32

// ParsePillarIDs parses a comma-separated list of pillar IDs.
//
// Tokens are trimmed and empty tokens are dropped, so "4, 8,,12" yields
// [4 8 12]. An empty or whitespace-only list yields an empty slice. Any
// remaining token that is not a base-10 integer fails the whole list with
// ErrInvalidPillarID.
func ParsePillarIDs(csv string) ([]int, error) {
	ids := []int{}
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.ParseInt(tok, 10, pillarIDBits)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPillarID, tok)
		}
		ids = append(ids, int(n))
	}
	return ids, nil
}
