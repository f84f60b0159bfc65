// Package validation provides token-based staleness prevention for
// asynchronous work whose result must only apply if it is still relevant
// when it arrives: a later input change issues a new token that implicitly
// cancels anything still in flight for an older one.
package validation

import "fmt"

// Token is a monotonically increasing validation request version. Token 0
// ("None") is reserved and never issued by Coordinator.Start.
type Token uint64

// None is the null token representing "no validation in flight".
const None Token = 0

// IsNone reports whether t is the null token.
func (t Token) IsNone() bool { return t == None }

func (t Token) String() string { return fmt.Sprintf("Token(%d)", uint64(t)) }
