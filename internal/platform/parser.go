package platform

import (
	"regexp"
	"strings"
)

// OthersKind is the kind assigned to peripherals whose type carries no
// namespace.
const OthersKind = "Others"

var (
	usingPattern      = regexp.MustCompile(`^using "([.A-Za-z0-9_/-]+)"`)
	peripheralPattern = regexp.MustCompile(`^[A-Za-z0-9_]+\s*:\s*([^\s]+)\s*@`)
)

// LineKind classifies a single line of a description file.
type LineKind int

const (
	LineIgnored LineKind = iota
	LineUsing
	LinePeripheral
)

func (k LineKind) String() string {
	switch k {
	case LineUsing:
		return "using"
	case LinePeripheral:
		return "peripheral"
	default:
		return "ignored"
	}
}

// Line is the result of classifying one description line. Include is set for
// LineUsing; Kind and Type are set for LinePeripheral.
type Line struct {
	Class   LineKind
	Include string
	Kind    string
	Type    string
}

// ParseLine classifies line. Include directives are checked before
// peripheral declarations; anything else is LineIgnored.
func ParseLine(line string) Line {
	if m := usingPattern.FindStringSubmatch(line); m != nil {
		return Line{Class: LineUsing, Include: m[1]}
	}
	if m := peripheralPattern.FindStringSubmatch(line); m != nil {
		kind, typ := SplitTypeName(m[1])
		return Line{Class: LinePeripheral, Kind: kind, Type: typ}
	}
	return Line{Class: LineIgnored}
}

// SplitTypeName splits a declared type on its first dot.
//
//	"UART.STM32_UART" → ("UART", "STM32_UART")
//	"Led"             → ("Others", "Led")
//	"A.B.C"           → ("A", "B.C")
func SplitTypeName(name string) (kind, typ string) {
	kind, typ, ok := strings.Cut(name, ".")
	if !ok {
		return OthersKind, name
	}
	return kind, typ
}
