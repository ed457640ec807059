// JSON encoding of frames in the dashboard wire schema.

package parser

import (
	"encoding/json"

	"SerialNode/internal/model"
)

// EncodeFrame encodes a Frame into its JSON wire form.
func EncodeFrame(f model.Frame) (string, error) {
	b, err := json.Marshal(f)
	return string(b), err
}

// DecodeFrameJSON decodes a JSON wire frame.
func DecodeFrameJSON(s string) (model.Frame, error) {
	var f model.Frame
	err := json.Unmarshal([]byte(s), &f)
	return f, err
}

// EncodeFrameInfo encodes a FrameInfo envelope into JSON.
func EncodeFrameInfo(fi model.FrameInfo) (string, error) {
	b, err := json.Marshal(fi)
	return string(b), err
}
