package wasm

import (
	"strconv"
	"sync/atomic"
)

// lastKey numbers element keys for every Browser in the program. Keys are
// written into the shared DOM, so two Browsers on one page must never hand
// out the same one.
var lastKey atomic.Int64

func newKey() string {
	return "nr-" + strconv.FormatInt(lastKey.Add(1), 10)
}
