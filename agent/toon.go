package agent

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/agentkit/core"
)

var (
	toonKeyRE     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	toonNumericRE = regexp.MustCompile(`^-?\d+(\.\d+)?([eE][+-]?\d+)?$|^0\d+$`)
)

// EncodeTOON renders a response in Token-Oriented Object Notation:
//
//	content: Hello there
//	metadata:
//	  source: codemode_orchestrator
//
// Metadata keys are sorted; a nil metadata map is written as null.
func EncodeTOON(resp *core.Response) string {
	var b strings.Builder
	b.WriteString("content: ")
	b.WriteString(toonString(resp.Content))
	b.WriteString("\nmetadata:")
	if resp.Metadata == nil {
		b.WriteString(" null")
		return b.String()
	}

	keys := make([]string, 0, len(resp.Metadata))
	for k := range resp.Metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		b.WriteString("\n  ")
		b.WriteString(toonKey(k))
		b.WriteString(": ")
		b.WriteString(toonString(resp.Metadata[k]))
	}
	return b.String()
}

func toonKey(k string) string {
	if toonKeyRE.MatchString(k) {
		return k
	}
	return quote(k)
}

func toonString(s string) string {
	if needsQuote(s) {
		return quote(s)
	}
	return s
}

func needsQuote(s string) bool {
	if s == "" || s != strings.TrimSpace(s) {
		return true
	}
	switch s {
	case "true", "false", "null":
		return true
	}
	if toonNumericRE.MatchString(s) || strings.HasPrefix(s, "-") {
		return true
	}
	return strings.ContainsAny(s, ":\"\\[]{},\n\r\t")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u`)
				b.WriteString(strconv.FormatInt(int64(r)+0x10000, 16)[1:])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
