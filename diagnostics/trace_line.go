package diagnostics

import (
	"encoding/json"
	"io"
)

// BufferTrace implements the opt-in debug buffer dump: after each
// RegExp node evaluates, its caller may append one JSON line recording
// the function, the node's path, and the bank's current contents.
type BufferTrace struct {
	Writer io.Writer
}

type traceLine struct {
	Function string         `json:"function"`
	Node     string         `json:"node"`
	Buffers  map[int]string `json:"buffers"`
}

// Emit appends one JSON line to the trace's writer. A nil BufferTrace,
// or one with a nil Writer, is a no-op — tracing is opt-in.
func (bt *BufferTrace) Emit(function, node string, snapshot map[int]string) error {
	if bt == nil || bt.Writer == nil {
		return nil
	}
	b, err := json.Marshal(traceLine{Function: function, Node: node, Buffers: snapshot})
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = bt.Writer.Write(b)
	return err
}
