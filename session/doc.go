// Package session houses the conversation key resolver and concrete
// implementations of the TokenStore contract. The contract is deliberately
// limited to get/set on an opaque resumption token so that swapping the
// in-memory registry for a networked store (see the redis sub-package)
// requires no change to the orchestration logic.
package session
