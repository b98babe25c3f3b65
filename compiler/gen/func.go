package gen

import (
	"go/token"
	"go/types"
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Form is an identifier casing convention.
type Form uint8

// Naming forms.
const (
	Snake Form = iota
	Pascal
	Camel
	Kebab
)

// String implements fmt.Stringer.
func (f Form) String() string {
	switch f {
	case Snake:
		return "snake"
	case Pascal:
		return "pascal"
	case Camel:
		return "camel"
	case Kebab:
		return "kebab"
	default:
		return "form(?)"
	}
}

// Names holds all naming forms of one identifier.
type Names struct {
	Snake  string
	Pascal string
	Camel  string
	Kebab  string
}

// NamesOf derives every form of raw.
func NamesOf(raw string) Names {
	w := words(raw)
	return Names{
		Snake:  renderForm(w, Snake),
		Pascal: renderForm(w, Pascal),
		Camel:  renderForm(w, Camel),
		Kebab:  renderForm(w, Kebab),
	}
}

// ToIdentifier converts raw into the given form. It is idempotent:
// ToIdentifier(ToIdentifier(x, f), f) == ToIdentifier(x, f).
func ToIdentifier(raw string, form Form) string {
	return renderForm(words(raw), form)
}

// maxPasses bounds the re-splitting of a cased identifier in renderForm.
const maxPasses = 8

// renderForm joins w in the given form. Cased forms may split differently when
// read back, e.g. "PointXY" reads as [point xy]; it returns the first
// result that reads back to itself. When none is reached the words are
// joined into one, which always reads back to itself.
func renderForm(w []string, form Form) string {
	s := joinForm(w, form)
	for range maxPasses {
		next := joinForm(words(s), form)
		if next == s {
			return s
		}
		s = next
	}
	return joinForm([]string{strings.Join(w, "")}, form)
}

func joinForm(w []string, form Form) string {
	switch form {
	case Pascal:
		return pascalWords(w)
	case Camel:
		return camelWords(w)
	case Kebab:
		return joinLower(w, "-")
	default:
		return joinLower(w, "_")
	}
}

// Namer converts table names after stripping configured prefixes.
type Namer struct {
	prefixes []string
}

// NewNamer returns a Namer stripping the given prefixes, e.g. "sys_".
func NewNamer(prefixes ...string) *Namer {
	n := &Namer{}
	for _, p := range prefixes {
		if p = snake(p); p != "" {
			n.prefixes = append(n.prefixes, p+"_")
		}
	}
	return n
}

// Strip returns the snake form of raw without its configured prefixes.
// Prefixes are removed repeatedly; a name is never stripped to nothing.
func (n *Namer) Strip(raw string) string {
	s := snake(raw)
	for stripped := true; stripped; {
		stripped = false
		for _, p := range n.prefixes {
			if strings.HasPrefix(s, p) && len(s) > len(p) {
				s, stripped = s[len(p):], true
			}
		}
	}
	return s
}

// ToIdentifier strips prefixes from raw and converts it into the given form.
func (n *Namer) ToIdentifier(raw string, form Form) string {
	return ToIdentifier(n.Strip(raw), form)
}

// Names returns every form of the stripped raw name.
func (n *Namer) Names(raw string) Names {
	return NamesOf(n.Strip(raw))
}

func snake(s string) string  { return ToIdentifier(s, Snake) }
func pascal(s string) string { return ToIdentifier(s, Pascal) }
func camel(s string) string  { return ToIdentifier(s, Camel) }

// plural returns the plural form of a Pascal or camel name.
func plural(name string) string {
	p := inflect.Pluralize(name)
	if p == name {
		p += "List"
	}
	return p
}

// humanize turns an identifier into a label: "dict_label" => "Dict label".
func humanize(s string) string {
	w := words(s)
	if len(w) == 0 {
		return ""
	}
	label := strings.Join(w, " ")
	first := cases.Title(language.English).String(w[0])
	if acronyms[strings.ToUpper(w[0])] {
		first = strings.ToUpper(w[0])
	}
	return first + label[len(w[0]):]
}

// receiver returns the receiver name of the given type.
//
//	[]T       => t
//	[1]T      => t
//	User      => u
//	UserQuery => uq
func receiver(s string) string {
	if i := strings.LastIndexAny(s, "]*"); i >= 0 {
		s = s[i+1:]
	}
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteByte(w[0])
	}
	r := b.String()
	if r == "" || token.Lookup(r).IsKeyword() {
		return "_" + r
	}
	return r
}

// reserved reports whether name is a Go keyword or predeclared identifier.
func reserved(name string) bool {
	return token.Lookup(name).IsKeyword() || types.Universe.Lookup(name) != nil
}

// words splits an identifier into lower-case words. Separators are any
// non-alphanumeric characters and case boundaries; upper-case runs are split
// into known acronyms where possible.
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	rs := []rune(s)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case isUpper(r):
			j := i
			for j < len(rs) && isUpper(rs[j]) {
				j++
			}
			run := rs[i:j]
			switch {
			// A plural acronym such as "IDs" stays one word.
			case j < len(rs) && rs[j] == 's' && (j+1 == len(rs) || !unicode.IsLower(rs[j+1])) && j-i > 1:
				flush()
				parts := splitAcronyms(string(run))
				parts[len(parts)-1] += "s"
				for _, part := range parts {
					out = append(out, strings.ToLower(part))
				}
				i = j
				continue
			// A run followed by a digit or an uncased letter continues into it: "A1b", "ID2".
			case j < len(rs) && !unicode.IsLower(rs[j]) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j])):
				flush()
				parts := splitAcronyms(string(run))
				for _, part := range parts[:len(parts)-1] {
					out = append(out, strings.ToLower(part))
				}
				cur = append(cur, []rune(parts[len(parts)-1])...)
				i = j - 1
				continue
			// The last upper-case letter of a run followed by lower case starts a new word.
			case j < len(rs) && unicode.IsLower(rs[j]):
				run = rs[i : j-1]
				j--
			}
			if len(run) > 0 {
				flush()
				for _, part := range splitAcronyms(string(run)) {
					out = append(out, strings.ToLower(part))
				}
			}
			if j < len(rs) && isUpper(rs[j]) {
				flush()
				cur = append(cur, rs[j])
				j++
			}
			i = j - 1
		case unicode.IsDigit(r) && len(cur) == 0 && len(out) > 0 && i > 0 &&
			(unicode.IsLetter(rs[i-1]) || unicode.IsDigit(rs[i-1])):
			out[len(out)-1] += string(r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return out
}

// isUpper reports whether r is an upper-case letter with a lower-case form.
func isUpper(r rune) bool {
	return unicode.IsUpper(r) && unicode.ToLower(r) != r
}

// splitAcronyms segments an upper-case run into known acronyms, greedily
// taking the longest match. Letters between matches stay together.
func splitAcronyms(run string) []string {
	var (
		parts []string
		rest  string
	)
	for i := 0; i < len(run); {
		n := 0
		for l := min(len(run)-i, maxAcronym); l >= 2; l-- {
			if acronyms[run[i:i+l]] {
				n = l
				break
			}
		}
		if n == 0 {
			rest += run[i : i+1]
			i++
			continue
		}
		if rest != "" {
			parts = append(parts, rest)
			rest = ""
		}
		parts = append(parts, run[i:i+n])
		i += n
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

func joinLower(w []string, sep string) string {
	return strings.Join(w, sep)
}

func pascalWords(w []string) string {
	var b strings.Builder
	for _, s := range w {
		b.WriteString(title(s))
	}
	return b.String()
}

func camelWords(w []string) string {
	if len(w) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(w[0])
	for _, s := range w[1:] {
		b.WriteString(title(s))
	}
	return b.String()
}

func title(w string) string {
	if u := strings.ToUpper(w); acronyms[u] {
		return u
	}
	rs := []rune(w)
	rs[0] = unicode.ToUpper(rs[0])
	return string(rs)
}

// maxAcronym is the length of the longest entry in acronyms.
const maxAcronym = 5

var acronyms = map[string]bool{
	"ACL":   true,
	"API":   true,
	"ASCII": true,
	"AWS":   true,
	"CPU":   true,
	"CSS":   true,
	"DNS":   true,
	"EOF":   true,
	"GUID":  true,
	"HTML":  true,
	"HTTP":  true,
	"HTTPS": true,
	"ID":    true,
	"IP":    true,
	"JSON":  true,
	"JWT":   true,
	"LHS":   true,
	"QPS":   true,
	"RAM":   true,
	"RHS":   true,
	"RPC":   true,
	"SLA":   true,
	"SMTP":  true,
	"SQL":   true,
	"SSH":   true,
	"SSO":   true,
	"TCP":   true,
	"TLS":   true,
	"TTL":   true,
	"UDP":   true,
	"UI":    true,
	"UID":   true,
	"URI":   true,
	"URL":   true,
	"UUID":  true,
	"VM":    true,
	"XML":   true,
	"XSRF":  true,
	"XSS":   true,
}
