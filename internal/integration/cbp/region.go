package cbp

import (
	"iter"
	"strings"

	"github.com/abelzeko/border-wait/internal/entities"
)

// DefaultRegion is the port number prefix of the Washington state ports
const DefaultRegion = "30"

// SelectByRegion yields the crossings whose port number starts with region
// when restrict is set, or every crossing otherwise, in source order.
func SelectByRegion(records []entities.BorderCrossing, restrict bool, region string) iter.Seq[entities.BorderCrossing] {
	return func(yield func(entities.BorderCrossing) bool) {
		for _, r := range records {
			if restrict && !strings.HasPrefix(r.PortNumber, region) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}
