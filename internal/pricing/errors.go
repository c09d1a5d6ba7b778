package pricing

import (
	"errors"
	"fmt"
)

// ErrUnknownQuantityTier is returned when a quantity label matches no catalog tier.
// The order cannot be priced without one.
var ErrUnknownQuantityTier = errors.New("unknown quantity tier")

// invariant panics. It guards lookups on closed enumerations, where a miss means a
// programming error and substituting a default would misprice the order.
func invariant(format string, args ...any) {
	panic(fmt.Sprintf("pricing: invariant violated: "+format, args...))
}
