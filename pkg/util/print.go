package util

import (
	"fmt"
	"strings"
	"unicode"
)

func ToPrintableString(b []byte) string {
	sz := len(b)
	if sz == 0 {
		return ""
	}
	buf := make([]byte, sz)
	for i := 0; i < sz; i++ {
		if b[i] < 32 || b[i] > 126 {
			buf[i] = '.'
		} else {
			buf[i] = b[i]
		}
	}
	return string(buf)
}

func ToHexString(data []byte) string {
	return fmt.Sprintf("%X", data)
}

func ToPrintableAndHexString(data []byte) string {
	return fmt.Sprintf("%s [%X]", ToPrintableString(data), data)
}

// HexDumpString renders data 16 bytes per line: offset, hex bytes, printable text.
func HexDumpString(data []byte) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%9s  ", "")
	for i := 0; i < 16; i++ {
		fmt.Fprintf(&sb, "%X  ", i)
	}
	sb.WriteByte('\n')

	szData := len(data)
	for start := 0; start < szData; start += 16 {
		end := start + 16
		if end > szData {
			end = szData
		}
		fmt.Fprintf(&sb, "%09X ", start)
		for j := start; j < end; j++ {
			fmt.Fprintf(&sb, "%02X ", data[j])
		}
		for j := end - start; j < 16; j++ {
			sb.WriteString("   ")
		}
		sb.WriteByte(' ')
		for j := start; j < end; j++ {
			v := data[j]
			if v < 128 && unicode.IsPrint(rune(v)) {
				sb.WriteByte(v)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func HexDump(data []byte) {
	fmt.Print(HexDumpString(data))
}
