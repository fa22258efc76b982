package main

import (
	"errors"
	"sort"
	"strings"
)

// invalidCommand is the usage bucket for lines that named no known command.
const invalidCommand = "invalid"

// Session holds the state of one interactive shell: the lines entered so
// far and how often each command ran. It is owned by the shell loop and
// discarded when the loop exits.
type Session struct {
	history []string
	usage   map[string]int
}

// NewSession returns an empty session.
func NewSession() *Session {
	return &Session{usage: make(map[string]int)}
}

// Record appends line to the history and counts one use of command. An
// empty command counts as invalid.
func (s *Session) Record(line, command string) {
	s.history = append(s.history, line)
	if command == "" {
		command = invalidCommand
	}
	s.usage[command]++
}

// History returns the last n lines, oldest first. n <= 0 returns all of them.
func (s *Session) History(n int) []string {
	if n <= 0 || n > len(s.history) {
		n = len(s.history)
	}
	out := make([]string, n)
	copy(out, s.history[len(s.history)-n:])
	return out
}

// Search returns every history line containing term, oldest first.
func (s *Session) Search(term string) []string {
	var out []string
	for _, line := range s.history {
		if strings.Contains(line, term) {
			out = append(out, line)
		}
	}
	return out
}

// UsageCount is one row of Session.Usage.
type UsageCount struct {
	Command string
	Count   int
}

// Usage returns per-command counts, most used first, ties by name.
func (s *Session) Usage() []UsageCount {
	out := make([]UsageCount, 0, len(s.usage))
	for name, n := range s.usage {
		out = append(out, UsageCount{Command: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Command < out[j].Command
	})
	return out
}

// Suggest returns the candidate closest to unknown, or "" when nothing is
// within two edits.
func Suggest(unknown string, candidates []string) string {
	best := ""
	bestDistance := 3
	for _, c := range candidates {
		if d := levenshtein(unknown, c); d < bestDistance {
			bestDistance = d
			best = c
		}
	}
	return best
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}
	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}
		previous = current
	}
	return previous[len(a)]
}

var errUnterminatedQuote = errors.New("unterminated quote")

// Token is one word of a shell line.
type Token struct {
	Text   string
	Quoted bool // some part of the word was inside quotes
}

// SplitArgs splits line into words on unquoted whitespace. Single and double
// quotes group words; a backslash escapes the next character outside single
// quotes.
func SplitArgs(line string) ([]Token, error) {
	var (
		tokens  []Token
		cur     strings.Builder
		inWord  bool
		quoted  bool
		quote   rune
		escaped bool
	)
	flush := func() {
		if inWord {
			tokens = append(tokens, Token{Text: cur.String(), Quoted: quoted})
		}
		cur.Reset()
		inWord, quoted = false, false
	}

	for _, ch := range line {
		switch {
		case escaped:
			cur.WriteRune(ch)
			escaped = false
		case ch == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if ch == quote {
				quote = 0
			} else {
				cur.WriteRune(ch)
			}
		case ch == '"' || ch == '\'':
			quote = ch
			inWord, quoted = true, true
		case ch == ' ' || ch == '\t':
			flush()
		default:
			cur.WriteRune(ch)
			inWord = true
		}
	}
	if quote != 0 || escaped {
		return nil, errUnterminatedQuote
	}
	flush()
	return tokens, nil
}
