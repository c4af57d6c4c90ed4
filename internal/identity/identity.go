// Package identity generates collision-resistant string identifiers for
// new entities and repairs identifier collisions after the fact.
package identity

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// randLen is the length of the base-36 random component. 36^9 keeps the
// collision probability negligible even for bursts of concurrent calls.
const randLen = 9

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

// New returns a fresh identifier of the form
//
//	<prefix><unix-millis>_<random>_<nanos>
//
// combining a wall-clock millisecond timestamp, an independent random
// component and a second high-resolution time source. The "_" separator
// cannot appear inside any component, so the parts stay distinguishable.
// New never fails.
func New(prefix string) string {
	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 10))
	sb.WriteByte('_')
	sb.WriteString(randomComponent())
	sb.WriteByte('_')
	sb.WriteString(strconv.FormatInt(time.Now().UnixNano(), 36))

	return sb.String()
}

func randomComponent() string {
	buf := make([]byte, randLen)
	for i := range buf {
		buf[i] = base36[rand.IntN(len(base36))]
	}

	return string(buf)
}

// RepairDuplicates returns a copy of ids where the second and later
// occurrences of any duplicated identifier are replaced with freshly
// generated ones. The first occurrence and the ordering of all entries
// are preserved, so references to the original identifier stay valid.
func RepairDuplicates(ids []string, prefix string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, len(ids))

	for i, id := range ids {
		for {
			if _, dup := seen[id]; !dup {
				break
			}
			id = New(prefix)
		}
		seen[id] = struct{}{}
		out[i] = id
	}

	return out
}
