package parser

import (
	"reflect"
	"strings"
	"sync"
	"testing"

	"SerialNode/internal/model"
)

func frameOf(kind, value string, plottable bool) model.Frame {
	return model.Frame{
		Type: "node",
		Groups: []model.Group{{
			Kind:     kind,
			Datasets: []model.Dataset{{Value: value, Plottable: plottable}},
		}},
	}
}

func TestDecodeFrameRecognizedKinds(t *testing.T) {
	tests := []struct {
		name string
		line string
		want model.Frame
	}{
		{"qidata joins payload", "x qidata 01 72 73", frameOf("qidata", "01 72 73", false)},
		{"state joins payload", "7 state RUN mode 2", frameOf("state", "RUN mode 2", false)},
		{"freq takes one token", "110 freq 50.5 ignored_extra", frameOf("freq", "50.5", true)},
		{"dut", "1 dut 0.42", frameOf("dut", "0.42", true)},
		{"dcvolt", "1 dcvolt 12.1", frameOf("dcvolt", "12.1", true)},
		{"Icrms", "1 Icrms 5", frameOf("Icrms", "5", true)},
		{"ptx", "1 ptx -3", frameOf("ptx", "-3", true)},
		{"prx", "1 prx -70", frameOf("prx", "-70", true)},
		{"ppad", "1 ppad 1e3", frameOf("ppad", "1e3", true)},
		{"pfor", "1 pfor 2", frameOf("pfor", "2", true)},
		{"temp", "1 temp 36.6", frameOf("temp", "36.6", true)},
		{"numeric kinds keep non-numeric text", "1 temp hot", frameOf("temp", "hot", true)},
		{"bracket prefix stripped", "[2020-10-18 09:01:50.141] 110 qidata 01 72 73", frameOf("qidata", "01 72 73", false)},
		{"several brackets stripped", "[a]1 [b]freq 3[c]", frameOf("freq", "3", true)},
		{"surrounding whitespace trimmed", "  \t1 freq 9\r\n", frameOf("freq", "9", true)},
		{"double space yields empty token", "1 freq  5", frameOf("freq", "", true)},
		{"empty tokens preserved in text", "1 state a  b", frameOf("state", "a  b", false)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeFrame(tt.line)
			if !ok {
				t.Fatalf("DecodeFrame(%q) returned no frame", tt.line)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("DecodeFrame(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestDecodeFrameNoFrame(t *testing.T) {
	lines := []string{
		"",
		"   ",
		"42",
		"42 freq",
		"42 freq ",
		"[2020-10-18 09:01:50.141]",
		"[meta] 1 temp",
		"1 ICRMS 5",
		"1 Freq 5",
		"1 null 5",
		"1 unknown a b c d",
		"1\tfreq\t5",
		"1 [freq] 5",
	}
	for _, line := range lines {
		got, ok := DecodeFrame(line)
		if ok {
			t.Fatalf("DecodeFrame(%q) = %+v, want no frame", line, got)
		}
		if !reflect.DeepEqual(got, model.Frame{}) {
			t.Fatalf("DecodeFrame(%q) returned partial frame %+v", line, got)
		}
	}
}

func TestDecodeFrameUnmatchedBracketKept(t *testing.T) {
	// "[" without a closing bracket stays in place and becomes part of the tokens.
	got, ok := DecodeFrame("1 state open [bracket")
	if !ok {
		t.Fatal("expected frame")
	}
	if v := got.Groups[0].Datasets[0].Value; v != "open [bracket" {
		t.Fatalf("value = %q", v)
	}

	// the inner-most "[...]" is removed; the outer "[" has a nested "[" so it is not matched.
	got, ok = DecodeFrame("1 state a[b[c]d")
	if !ok {
		t.Fatal("expected frame")
	}
	if v := got.Groups[0].Datasets[0].Value; v != "a[bd" {
		t.Fatalf("value = %q", v)
	}
}

func TestDecodeFrameBracketEquivalence(t *testing.T) {
	a, okA := DecodeFrame("[2020-10-18 09:01:50.141] 110 qidata 01 72 73")
	b, okB := DecodeFrame("110 qidata 01 72 73")
	if !okA || !okB {
		t.Fatalf("expected both lines to decode: %v %v", okA, okB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("bracketed %+v != plain %+v", a, b)
	}
}

func TestDecodeFrameSingleGroupSingleDataset(t *testing.T) {
	for _, kind := range Kinds() {
		f, ok := DecodeFrame("1 " + kind + " 1 2 3")
		if !ok {
			t.Fatalf("kind %s not decoded", kind)
		}
		if len(f.Groups) != 1 || len(f.Groups[0].Datasets) != 1 {
			t.Fatalf("kind %s: groups=%d", kind, len(f.Groups))
		}
		if f.Type != model.FrameType {
			t.Fatalf("kind %s: type %q", kind, f.Type)
		}
	}
}

func TestDecodeFrameTickNotEmitted(t *testing.T) {
	f, ok := DecodeFrame("987654 freq 1")
	if !ok {
		t.Fatal("expected frame")
	}
	s, err := EncodeFrame(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(s, "987654") {
		t.Fatalf("tick leaked into output: %s", s)
	}
}

func TestDecodeFrameRoundTripThroughLine(t *testing.T) {
	lines := []string{"5 freq 50.5", "5 temp -1", "5 state OK", "5 qidata 01 72 73"}
	for _, line := range lines {
		first, ok := DecodeFrame(line)
		if !ok {
			t.Fatalf("decode %q", line)
		}
		second, ok := DecodeFrame(FrameToLine("5", first))
		if !ok || !reflect.DeepEqual(first, second) {
			t.Fatalf("re-decode of %q changed frame: %+v vs %+v", line, first, second)
		}
	}
}

func TestDecodeFrameConcurrent(t *testing.T) {
	want, _ := DecodeFrame("[ts] 1 qidata aa bb")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				got, ok := DecodeFrame("[ts] 1 qidata aa bb")
				if !ok || !reflect.DeepEqual(got, want) {
					t.Errorf("concurrent decode mismatch: %+v", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestKindsAndPlottable(t *testing.T) {
	want := []string{"Icrms", "dcvolt", "dut", "freq", "pfor", "ppad", "prx", "ptx", "qidata", "state", "temp"}
	if got := Kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Kinds() = %v, want %v", got, want)
	}
	if p, ok := Plottable("state"); !ok || p {
		t.Fatalf("Plottable(state) = %v, %v", p, ok)
	}
	if p, ok := Plottable("Icrms"); !ok || !p {
		t.Fatalf("Plottable(Icrms) = %v, %v", p, ok)
	}
	if _, ok := Plottable("icrms"); ok {
		t.Fatal("Plottable(icrms) should be unknown")
	}
}
