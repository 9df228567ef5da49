package render

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEGACY TEMPLATE
// =============================================================================

// The legacy akumulasi template is a Django-like text with a fixed subset
// of tags. Passes run in this order over the whole text:
//
//	1. {% if x %} and {% endif %} are removed, the body always stays
//	2. {% for item in list %}...{% endfor %} repeats the body per item,
//	   replacing {{ item.prop }}
//	3. {{obj.prop}}
//	4. {{var}}
//	5. {{var|date:"d-m-Y"}} as DD-MM-YYYY, any other format as a long date;
//	   empty values print "-"
//	6. {{var|floatformat:"N"}} with N decimals; non-numbers print "0.00"
//
// Missing variables print as the empty string. Whitespace inside the braces
// is optional everywhere.

//go:embed templates/akumulasi.html
var defaultAkumulasi string

var (
	ifTag    = regexp.MustCompile(`\{%\s*if\s+\w+\s*%\}`)
	endifTag = regexp.MustCompile(`\{%\s*endif\s*%\}`)
	forBlock = regexp.MustCompile(`(?s)\{%\s*for\s+(\w+)\s+in\s+(\w+)\s*%\}(.*?)\{%\s*endfor\s*%\}`)
	fieldVar = regexp.MustCompile(`\{\{\s*(\w+)\.(\w+)\s*\}\}`)
	plainVar = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
	dateVar  = regexp.MustCompile(`\{\{\s*(\w+)\s*\|\s*date:"([^"]+)"\s*\}\}`)
	floatVar = regexp.MustCompile(`\{\{\s*(\w+)\s*\|\s*floatformat:"([^"]+)"\s*\}\}`)
)

var (
	itemMu    sync.Mutex
	itemCache = map[string]*regexp.Regexp{}
)

// Template is a parsed legacy template. It is safe for concurrent use.
type Template struct {
	src string
}

func NewTemplate(src string) *Template { return &Template{src: src} }

// DefaultAkumulasiTemplate returns the built-in akumulasi template.
func DefaultAkumulasiTemplate() *Template { return NewTemplate(defaultAkumulasi) }

// LoadTemplate reads a template file. An empty path gives the built-in one.
func LoadTemplate(path string) (*Template, error) {
	if path == "" {
		return DefaultAkumulasiTemplate(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}
	return NewTemplate(string(b)), nil
}

// Source returns the raw template text.
func (t *Template) Source() string { return t.src }

// Execute substitutes data into the template.
func (t *Template) Execute(data map[string]any) string {
	out := ifTag.ReplaceAllString(t.src, "")
	out = endifTag.ReplaceAllString(out, "")

	out = forBlock.ReplaceAllStringFunc(out, func(m string) string {
		sub := forBlock.FindStringSubmatch(m)
		item, list, body := sub[1], sub[2], sub[3]
		re := itemPattern(item)
		var b strings.Builder
		for _, elem := range listOf(data[list]) {
			b.WriteString(re.ReplaceAllStringFunc(body, func(v string) string {
				return lookup(elem, re.FindStringSubmatch(v)[1])
			}))
		}
		return b.String()
	})

	out = fieldVar.ReplaceAllStringFunc(out, func(m string) string {
		sub := fieldVar.FindStringSubmatch(m)
		obj, ok := data[sub[1]].(map[string]any)
		if !ok {
			return ""
		}
		return lookup(obj, sub[2])
	})

	out = plainVar.ReplaceAllStringFunc(out, func(m string) string {
		return lookup(data, plainVar.FindStringSubmatch(m)[1])
	})

	out = dateVar.ReplaceAllStringFunc(out, func(m string) string {
		sub := dateVar.FindStringSubmatch(m)
		v := lookup(data, sub[1])
		if v == "" {
			return "-"
		}
		if sub[2] == "d-m-Y" {
			return Date(v)
		}
		return LongDate(v)
	})

	out = floatVar.ReplaceAllStringFunc(out, func(m string) string {
		sub := floatVar.FindStringSubmatch(m)
		places, err := strconv.Atoi(sub[2])
		if err != nil || places < 0 {
			places = 2
		}
		d, err := decimal.NewFromString(strings.TrimSpace(lookup(data, sub[1])))
		if err != nil {
			return "0.00"
		}
		return d.StringFixed(int32(places))
	})
	return out
}

// itemPattern matches {{ item.prop }} for one loop variable name. Patterns
// are built once per name; templates use a handful of names.
func itemPattern(name string) *regexp.Regexp {
	itemMu.Lock()
	defer itemMu.Unlock()
	re, ok := itemCache[name]
	if !ok {
		re = regexp.MustCompile(`\{\{\s*` + regexp.QuoteMeta(name) + `\.(\w+)\s*\}\}`)
		itemCache[name] = re
	}
	return re
}

func listOf(v any) []map[string]any {
	switch l := v.(type) {
	case []map[string]any:
		return l
	case []any:
		out := make([]map[string]any, 0, len(l))
		for _, e := range l {
			if m, ok := e.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

func lookup(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case decimal.Decimal:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
