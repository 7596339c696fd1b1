package console

import "strings"

// safeChars are the characters that need no quoting in a POSIX shell word.
const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@%+=:,./-_"

// shellQuote renders a string as a single POSIX shell word, using single
// quotes when any character could be interpreted by the shell.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}

	safe := true

	for _, r := range s {
		if !strings.ContainsRune(safeChars, r) {
			safe = false

			break
		}
	}

	if safe {
		return s
	}

	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
