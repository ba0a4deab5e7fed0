// Package runeio names control characters for log lines and decodes the key
// stream a remote terminal sends.
package runeio

import "strings"

var c0Names = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "NL", "VT", "NP", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// Name returns the mnemonic of a C0 control rune or DEL, like "<ESC>", or ""
// for any other rune.
func Name(r rune) string {
	switch {
	case 0 <= r && r < 0x20:
		return "<" + c0Names[r] + ">"
	case r == 0x7f:
		return "<DEL>"
	}
	return ""
}

// CaretForm computes the ^-escaped printable form of a control rune.
func CaretForm(r rune) string {
	if r < 0x20 || r == 0x7f {
		return "^" + string(r^0x40)
	} else if 0x80 <= r && r <= 0x9f {
		return "^[" + string(r^0xc0)
	}
	return ""
}

// Quote replaces every control byte in s with its caret form.
func Quote(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if caret := CaretForm(rune(s[i])); caret != "" {
			sb.WriteString(caret)
		} else {
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}
