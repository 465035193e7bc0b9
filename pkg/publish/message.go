package publish

import (
	"encoding/json"

	"github.com/vango-dev/navroute/pkg/router"
)

// Param is a path parameter on the wire.
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is one published event.
type Request struct {
	ID     uint64  `json:"id"`
	Event  string  `json:"event"`
	Params []Param `json:"params"`
}

// Reply answers the request with the same ID. Error is set when the
// subscriber failed; Result is the subscriber's result otherwise.
type Reply struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func paramsFromContext(ctx router.Context) []Param {
	params := make([]Param, len(ctx))
	for i, p := range ctx {
		params[i] = Param{Name: p.Name, Value: p.Value}
	}
	return params
}

func contextFromParams(params []Param) router.Context {
	ctx := make(router.Context, len(params))
	for i, p := range params {
		ctx[i] = router.Param{Name: p.Name, Value: p.Value}
	}
	return ctx
}
