package room

// Response is the envelope for every message sent to a client
type Response struct {
	Key     string      `json:"key"`
	Value   string      `json:"value"`
	Data    interface{} `json:"data"`
	Context string      `json:"context"`
}

// OK returns a generic success response
func OK(ctx ...string) *Response {
	res := &Response{
		Key:   "status",
		Value: "OK",
	}

	if len(ctx) == 1 {
		res.Context = ctx[0]
	}

	return res
}

func newErrorResponse(ctx string, err error) *Response {
	return &Response{
		Key:     "error",
		Value:   err.Error(),
		Context: ctx,
	}
}
