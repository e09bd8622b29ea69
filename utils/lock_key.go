package utils

import "fmt"

// PairKey builds a deterministic lock ID for a pair of user IDs: the same
// key comes out no matter which side triggers first.
func PairKey(event, a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s_%s_%s", event, a, b)
}
