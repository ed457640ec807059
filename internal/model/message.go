// Package model defines shared message structures for SerialNode.
package model

import "time"

// FrameType is the root tag carried by every decoded frame.
const FrameType = "node"

// Frame is one decoded telemetry record. Field names follow the short
// dashboard wire schema: {t, g:[{t, d:[{v, g}]}]}.
type Frame struct {
	Type   string  `json:"t"`
	Groups []Group `json:"g"`
}

// Group holds the datasets of a single measurement kind.
type Group struct {
	Kind     string    `json:"t"`
	Datasets []Dataset `json:"d"`
}

// Dataset is a single value. Value keeps the raw token text for numeric
// kinds and the joined payload for textual kinds.
type Dataset struct {
	Value     string `json:"v"`
	Plottable bool   `json:"g"`
}

// Kind returns the kind tag of the first group, or "" for an empty frame.
func (f Frame) Kind() string {
	if len(f.Groups) == 0 {
		return ""
	}
	return f.Groups[0].Kind
}

// FrameInfo wraps a frame with the sequence number and receive time assigned
// by the node that read it.
type FrameInfo struct {
	Number uint64    `json:"n"`
	Time   time.Time `json:"ts"`
	Source string    `json:"src"`
	Frame  Frame     `json:"f"`
}
