package locale

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Lang is a supported site language.
type Lang string

const (
	PL Lang = "pl"
	EN Lang = "en"
	DE Lang = "de"
)

// Default is used whenever no valid language was requested.
const Default = PL

// Langs lists the supported languages in switcher order.
var Langs = []Lang{PL, EN, DE}

// Parse normalizes s and reports whether it names a supported language.
func Parse(s string) (Lang, bool) {
	l := Lang(strings.ToLower(strings.TrimSpace(s)))
	switch l {
	case PL, EN, DE:
		return l, true
	}
	return Default, false
}

// Next returns the language after l in switcher order.
func Next(l Lang) Lang {
	for i, x := range Langs {
		if x == l {
			return Langs[(i+1)%len(Langs)]
		}
	}
	return Default
}

// Texts is the dictionary for one language.
type Texts struct {
	Site     Site     `yaml:"site"`
	About    Section  `yaml:"about"`
	Showcase Showcase `yaml:"showcase"`
	Menu     Menu     `yaml:"menu"`
	Contact  Section  `yaml:"contact"`
}

type Site struct {
	Title      string `yaml:"title"`
	Tagline    string `yaml:"tagline"`
	NavAbout   string `yaml:"nav_about"`
	NavDaily   string `yaml:"nav_daily"`
	NavMenu    string `yaml:"nav_menu"`
	NavContact string `yaml:"nav_contact"`
}

type Section struct {
	Title string `yaml:"title"`
	Body  string `yaml:"body"`
}

// Showcase holds the daily showcase strings.
type Showcase struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Empty    string `yaml:"empty"`
	Closed   string `yaml:"closed"`
	Prev     string `yaml:"prev"`
	Next     string `yaml:"next"`
}

type Menu struct {
	Title string `yaml:"title"`
	Close string `yaml:"close"`
}

//go:embed texts.yaml
var textsYAML []byte

var (
	loadOnce sync.Once
	dicts    map[Lang]Texts
	loadErr  error
)

// Load parses dictionaries from YAML keyed by language code.
func Load(b []byte) (map[Lang]Texts, error) {
	raw := map[string]Texts{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse locale dictionaries: %w", err)
	}
	out := make(map[Lang]Texts, len(raw))
	for k, v := range raw {
		l, ok := Parse(k)
		if !ok {
			return nil, fmt.Errorf("unsupported language in dictionaries: %q", k)
		}
		out[l] = v
	}
	for _, l := range Langs {
		if _, ok := out[l]; !ok {
			return nil, fmt.Errorf("missing dictionary for %q", l)
		}
	}
	return out, nil
}

func embedded() (map[Lang]Texts, error) {
	loadOnce.Do(func() {
		dicts, loadErr = Load(textsYAML)
	})
	return dicts, loadErr
}

// Lookup returns the dictionary for l, falling back to Default. The embedded
// dictionaries are validated by tests, so a parse failure is a build defect.
func Lookup(l Lang) Texts {
	d, err := embedded()
	if err != nil {
		panic(err)
	}
	if t, ok := d[l]; ok {
		return t
	}
	return d[Default]
}

// PluralPL picks the Polish plural form for n: one for 1, few for numbers
// ending in 2-4 (except 12-14), many otherwise.
func PluralPL(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	m10, m100 := n%10, n%100
	switch {
	case n == 1:
		return one
	case m10 >= 2 && m10 <= 4 && !(m100 >= 12 && m100 <= 14):
		return few
	default:
		return many
	}
}
