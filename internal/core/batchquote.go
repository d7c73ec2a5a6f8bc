package core

import "strings"

// Helpers that make arbitrary task text safe to embed in a cmd.exe batch file.

// windowsPath converts forward slashes to the backslash separator cmd expects.
func windowsPath(p string) string {
	return strings.ReplaceAll(strings.TrimSpace(p), "/", `\`)
}

// trimTrailingSeparators strips trailing backslashes so that %~nx yields the
// leaf name. A drive root such as C:\ is left alone.
func trimTrailingSeparators(p string) string {
	for len(p) > 1 && strings.HasSuffix(p, `\`) {
		if len(p) == 3 && p[1] == ':' {
			break
		}
		p = p[:len(p)-1]
	}
	return p
}

// quoteArg wraps s in double quotes for use as a command argument. Percent
// signs are doubled so they survive batch expansion; embedded quotes cannot
// be represented inside a cmd argument and are dropped, as are line breaks.
func quoteArg(s string) string {
	s = argStripper.Replace(s)
	return `"` + escapePercent(s) + `"`
}

var (
	argStripper   = strings.NewReplacer(`"`, "", "\r", "", "\n", "")
	breakStripper = strings.NewReplacer("\r", "", "\n", "")
)

func escapePercent(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

var echoReplacer = strings.NewReplacer(
	"^", "^^",
	"&", "^&",
	"|", "^|",
	"<", "^<",
	">", "^>",
	"(", "^(",
	")", "^)",
	"%", "%%",
	"\r", "",
	"\n", " ",
)

// echoText escapes s for the argument of an unquoted echo, including inside a
// parenthesised block where a bare ")" would end the block.
func echoText(s string) string {
	return echoReplacer.Replace(s)
}

// psQuote escapes s for a double-quoted PowerShell string nested inside a
// cmd double-quoted -Command argument.
func psQuote(s string) string {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "`", "``")
	s = strings.ReplaceAll(s, "$", "`$")
	return escapePercent(s)
}
