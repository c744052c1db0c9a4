package playerjs

import (
	"time"

	"github.com/dlclark/regexp2"
)

const (
	RuleGlobalTable     = "global_table"
	RuleCipherTransform = "cipher_transform"
	RuleNTransform      = "n_transform"
)

const analyzerTimeout = 10 * time.Second

var (
	globalTablePattern = mustCompile(`'use strict';(?<code>(?:const|var|let) (?<name>\w{1,3})=.{100,3000}(?:"\]|\.split\("."\)))(?:,|;)`, regexp2.Singleline)
	cipherEntryPattern = mustCompile(`=(?<name>.{1,3})\(decodeURIComponent`, regexp2.Singleline)
	nParamPattern      = mustCompile(`function\((?<param>\w{1,3})\)`, regexp2.None)
)

func mustCompile(pattern string, opts regexp2.RegexOptions) *regexp2.Regexp {
	re := regexp2.MustCompile(pattern, opts)
	re.MatchTimeout = analyzerTimeout
	return re
}

func compile(pattern string, opts regexp2.RegexOptions) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = analyzerTimeout
	return re, nil
}

// Fragment is a piece of player script ready to be evaluated. Name is the
// identifier to call (or, for the global table, the table's variable name).
type Fragment struct {
	Name string
	Code string
}

// Analyzer locates the transform functions inside one player script. Every
// rule is independent; a failing rule never affects the others.
type Analyzer struct {
	text []rune
}

func NewAnalyzer(script string) *Analyzer {
	return &Analyzer{text: []rune(script)}
}

// GlobalTable finds the string table declared right after 'use strict'.
func (a *Analyzer) GlobalTable() (Fragment, error) {
	m, err := globalTablePattern.FindRunesMatch(a.text)
	if err != nil {
		return Fragment{}, &RuleError{Rule: RuleGlobalTable, Reason: "match failed", Err: err}
	}
	if m == nil {
		return Fragment{}, &RuleError{Rule: RuleGlobalTable, Reason: "declaration not found"}
	}
	code := m.GroupByName("code")
	name := m.GroupByName("name")

	out := code.String()
	valueStart := name.Index + name.Length + 1
	if end, ok := scanTableValue(a.text, valueStart); ok && end <= code.Index+code.Length {
		out = string(a.text[code.Index:end])
	}
	return Fragment{Name: name.String(), Code: out}, nil
}

// CipherTransform finds the signature function, the helper object it calls
// and composes them with the global table.
func (a *Analyzer) CipherTransform(table Fragment) (Fragment, error) {
	fail := func(reason string, err error) (Fragment, error) {
		return Fragment{}, &RuleError{Rule: RuleCipherTransform, Reason: reason, Err: err}
	}
	if table.Name == "" {
		return fail("global table unavailable", nil)
	}

	m, err := cipherEntryPattern.FindRunesMatch(a.text)
	if err != nil {
		return fail("entry match failed", err)
	}
	if m == nil {
		return fail("entry name not found", nil)
	}
	name := m.GroupByName("name").String()

	bodyPattern, err := compile(regexp2.Escape(name)+`=(?<body>function.{1,1000}\};)`, regexp2.None)
	if err != nil {
		return fail("bad entry name", err)
	}
	m, err = bodyPattern.FindRunesMatch(a.text)
	if err != nil {
		return fail("body match failed", err)
	}
	if m == nil {
		return fail("entry body not found", nil)
	}
	bodyGroup := m.GroupByName("body")
	body := tightenStatement(a.text, bodyGroup.Index, bodyGroup.Index+bodyGroup.Length, bodyGroup.String())

	helperNamePattern, err := compile(`function\(.{1,3}\).{1,20};(?<name>.{1,6})\[`+regexp2.Escape(table.Name)+`\[`, regexp2.None)
	if err != nil {
		return fail("bad table name", err)
	}
	m, err = helperNamePattern.FindStringMatch(body)
	if err != nil {
		return fail("helper name match failed", err)
	}
	if m == nil {
		return fail("helper name not found", nil)
	}
	helperName := m.GroupByName("name").String()

	helperPattern, err := compile(`(?:const|let|var) `+regexp2.Escape(helperName)+`=.{1,1000}\}\};`, regexp2.Singleline)
	if err != nil {
		return fail("bad helper name", err)
	}
	m, err = helperPattern.FindRunesMatch(a.text)
	if err != nil {
		return fail("helper match failed", err)
	}
	if m == nil {
		return fail("helper object not found", nil)
	}
	helper := tightenStatement(a.text, m.Index, m.Index+m.Length, m.String())

	code := table.Code + ";\r\n" + helper + "\r\nconst " + name + "=" + body + "\r\n"
	return Fragment{Name: name, Code: code}, nil
}

// NTransform finds the throttling parameter function, removes its early
// return guard and binds it to the name "decrypt".
func (a *Analyzer) NTransform(table Fragment) (Fragment, error) {
	fail := func(reason string, err error) (Fragment, error) {
		return Fragment{}, &RuleError{Rule: RuleNTransform, Reason: reason, Err: err}
	}
	if table.Name == "" {
		return fail("global table unavailable", nil)
	}

	fnPattern, err := compile(`function\(\w{1,3}\)\{var \w{1,3}=.{100,6000}new Date.{100,6000}`+regexp2.Escape(table.Name)+`\[\d{1,3}\]\)\};`, regexp2.Singleline)
	if err != nil {
		return fail("bad table name", err)
	}
	m, err := fnPattern.FindRunesMatch(a.text)
	if err != nil {
		return fail("function match failed", err)
	}
	if m == nil {
		return fail("function not found", nil)
	}
	fn := tightenStatement(a.text, m.Index, m.Index+m.Length, m.String())

	pm, err := nParamPattern.FindStringMatch(fn)
	if err != nil || pm == nil {
		return fail("parameter not found", err)
	}
	param := pm.GroupByName("param").String()

	guardPattern, err := compile(`if\(typeof .{6,20}\)return `+regexp2.Escape(param)+`;`, regexp2.None)
	if err != nil {
		return fail("bad parameter name", err)
	}
	fixed, err := guardPattern.Replace(fn, "", 0, 1)
	if err != nil {
		return fail("guard removal failed", err)
	}

	return Fragment{Name: "decrypt", Code: table.Code + "\r\nconst decrypt=" + fixed + "\r\n"}, nil
}

// tightenStatement narrows a greedy match [start, end) to the first balanced
// block after start, keeping the trailing semicolon. The match text is
// returned unchanged when no balanced block ends inside it.
func tightenStatement(text []rune, start, end int, match string) string {
	open := -1
	for i := start; i < end; i++ {
		if text[i] == '{' {
			open = i
			break
		}
	}
	if open < 0 {
		return match
	}
	stop, ok := matchBlock(text, open)
	if !ok || stop >= end {
		return match
	}
	return string(text[start:stop]) + ";"
}

// scanTableValue returns the end of an array literal or of a
// "...".split("x") expression starting at i.
func scanTableValue(text []rune, i int) (int, bool) {
	if i >= len(text) {
		return 0, false
	}
	switch text[i] {
	case '[':
		return matchBlock(text, i)
	case '"', '\'':
		end, ok := skipString(text, i)
		if !ok || !hasPrefixAt(text, end, ".split(") {
			return 0, false
		}
		end, ok = skipString(text, end+len(".split("))
		if !ok || end >= len(text) || text[end] != ')' {
			return 0, false
		}
		return end + 1, true
	}
	return 0, false
}

// matchBlock returns the index after the bracket closing text[open]. String
// and template literals are skipped.
func matchBlock(text []rune, open int) (int, bool) {
	if open < 0 || open >= len(text) {
		return 0, false
	}
	opener := text[open]
	var closer rune
	switch opener {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	default:
		return 0, false
	}
	depth := 0
	for i := open; i < len(text); i++ {
		switch c := text[i]; c {
		case '"', '\'', '`':
			end, ok := skipString(text, i)
			if !ok {
				return 0, false
			}
			i = end - 1
		case opener:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return i + 1, true
			}
		}
	}
	return 0, false
}

// skipString returns the index after the literal quoted at text[i].
func skipString(text []rune, i int) (int, bool) {
	if i >= len(text) {
		return 0, false
	}
	quote := text[i]
	if quote != '"' && quote != '\'' && quote != '`' {
		return 0, false
	}
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case quote:
			return j + 1, true
		}
	}
	return 0, false
}

func hasPrefixAt(text []rune, i int, prefix string) bool {
	for _, r := range prefix {
		if i >= len(text) || text[i] != r {
			return false
		}
		i++
	}
	return true
}
