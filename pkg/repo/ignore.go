package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFileName is the per-repository ignore list at the working-tree root.
const IgnoreFileName = ".fvtignore"

// alwaysIgnored directories are never walked or tracked.
var alwaysIgnored = []string{MetaDirName, ".git"}

// IgnoreChecker decides whether a repo-relative path is excluded from
// full-tree commits and status.
type IgnoreChecker struct {
	rules []ignoreRule
}

type ignoreRule struct {
	glob     string
	negated  bool
	dirOnly  bool
	anchored bool // contains a slash, so matched against the full path
	re       *regexp.Regexp
}

// NewIgnoreChecker loads .fvtignore from root when present. Blank lines and
// lines starting with # are skipped, a leading ! re-includes, and a trailing
// / limits a rule to directories.
func NewIgnoreChecker(root string) *IgnoreChecker {
	ic := &IgnoreChecker{}
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return ic
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if rule, ok := parseIgnoreRule(sc.Text()); ok {
			ic.rules = append(ic.rules, rule)
		}
	}
	return ic
}

func parseIgnoreRule(line string) (ignoreRule, bool) {
	line = strings.TrimRight(line, " \t\r")
	if line == "" || strings.HasPrefix(line, "#") {
		return ignoreRule{}, false
	}

	var rule ignoreRule
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		rule.negated = true
		line = rest
	}
	if strings.HasSuffix(line, "/") {
		rule.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return ignoreRule{}, false
	}
	rule.anchored = strings.Contains(line, "/")
	rule.glob = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globstarRegex(line)); err == nil {
			rule.re = re
		}
	}
	return rule, true
}

// IsIgnored reports whether the file rel (slash-separated, relative to the
// root) is ignored, either itself or through an ignored ancestor directory.
// The last matching rule wins.
func (ic *IgnoreChecker) IsIgnored(rel string) bool {
	return ic.ignored(rel, false)
}

// IsIgnoredDir is IsIgnored for a directory, which dir-only rules also match.
func (ic *IgnoreChecker) IsIgnoredDir(rel string) bool {
	return ic.ignored(rel, true)
}

func (ic *IgnoreChecker) ignored(rel string, leafIsDir bool) bool {
	rel = strings.Trim(filepath.ToSlash(rel), "/")
	if rel == "" || rel == "." {
		return false
	}
	first, _, _ := strings.Cut(rel, "/")
	for _, dir := range alwaysIgnored {
		if first == dir {
			return true
		}
	}

	ignored := false
	segments := strings.Split(rel, "/")
	for i := range segments {
		prefix := strings.Join(segments[:i+1], "/")
		isDir := leafIsDir || i < len(segments)-1
		for _, rule := range ic.rules {
			if rule.dirOnly && !isDir {
				continue
			}
			if rule.matches(prefix) {
				ignored = !rule.negated
			}
		}
		// Once a directory is excluded nothing beneath it can be re-included.
		if ignored && isDir {
			return true
		}
	}
	return ignored
}

func (r ignoreRule) matches(p string) bool {
	target := p
	if !r.anchored {
		target = path.Base(p)
	}
	if r.re != nil {
		return r.re.MatchString(target)
	}
	ok, _ := path.Match(r.glob, target)
	return ok
}

// globstarRegex translates a glob containing ** into an anchored regexp.
func globstarRegex(glob string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(glob); i++ {
		switch ch := glob[i]; {
		case ch == '*' && i+1 < len(glob) && glob[i+1] == '*':
			if i+2 < len(glob) && glob[i+2] == '/' {
				b.WriteString("(?:.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	b.WriteString("$")
	return b.String()
}
