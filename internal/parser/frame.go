// Package parser converts raw telemetry lines to structured frames and vice-versa.
//
// Line wire format (instrument -> node):
//
//	[<optional bracketed metadata>] TICK KIND [PAYLOAD...]
//
// e.g. "[2020-10-18 09:01:50.141] 110 qidata 01 72 73".
package parser

import (
	"regexp"
	"sort"
	"strings"

	"SerialNode/internal/model"
)

// defaultKind is assigned when a line has no second token.
const defaultKind = "null"

// bracketed matches a non-nesting [...] segment.
var bracketed = regexp.MustCompile(`\[[^\[]*\]`)

type payloadMode int

const (
	payloadToken payloadMode = iota // token at index 2 only
	payloadText                     // tokens 2.. joined with a space
)

type kindRule struct {
	mode      payloadMode
	plottable bool
}

// kinds is the recognized kind table. Tags are matched case-sensitively;
// Icrms keeps its capital I because dashboards key on it.
var kinds = map[string]kindRule{
	"qidata": {payloadText, false},
	"state":  {payloadText, false},
	"freq":   {payloadToken, true},
	"dut":    {payloadToken, true},
	"dcvolt": {payloadToken, true},
	"Icrms":  {payloadToken, true},
	"ptx":    {payloadToken, true},
	"prx":    {payloadToken, true},
	"ppad":   {payloadToken, true},
	"pfor":   {payloadToken, true},
	"temp":   {payloadToken, true},
}

// DecodeFrame parses one telemetry line into a Frame.
// The second return value is false when the line has fewer than three
// tokens or an unknown kind; the returned Frame is then the zero value.
// The tick token is only used for positioning and is not emitted.
func DecodeFrame(line string) (model.Frame, bool) {
	line = bracketed.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)

	// single space on purpose: runs of spaces yield empty tokens
	fields := strings.Split(line, " ")

	kind := defaultKind
	if len(fields) > 1 {
		kind = fields[1]
	}
	if len(fields) < 3 {
		return model.Frame{}, false
	}

	rule, ok := kinds[kind]
	if !ok {
		return model.Frame{}, false
	}

	value := fields[2]
	if rule.mode == payloadText {
		value = strings.Join(fields[2:], " ")
	}

	return model.Frame{
		Type: model.FrameType,
		Groups: []model.Group{{
			Kind:     kind,
			Datasets: []model.Dataset{{Value: value, Plottable: rule.plottable}},
		}},
	}, true
}

// Kinds returns the recognized kind tags in sorted order.
func Kinds() []string {
	out := make([]string, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Plottable reports whether kind is graphable. ok is false for unknown kinds.
func Plottable(kind string) (plottable bool, ok bool) {
	rule, ok := kinds[kind]
	return rule.plottable, ok
}

// FrameToLine renders the first dataset of f back into line form using tick
// as the sequence token. Frames without a dataset render as "<tick> <kind>".
func FrameToLine(tick string, f model.Frame) string {
	if len(f.Groups) == 0 {
		return tick
	}
	g := f.Groups[0]
	if len(g.Datasets) == 0 {
		return tick + " " + g.Kind
	}
	return tick + " " + g.Kind + " " + g.Datasets[0].Value
}
