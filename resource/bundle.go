package resource

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Ext is the file extension of bundle files.
const Ext = ".yaml"

// Bundle holds the canonical table of a resource family and its
// translations.
type Bundle struct {
	base    string
	keys    []string
	tags    []language.Tag
	tables  []map[string]string
	matcher language.Matcher
}

// Load reads base+".yaml" and every base+".<tag>.yaml" found in fsys.
// The canonical file is required; files whose tag does not parse are
// reported as errors.
func Load(fsys fs.FS, base string) (*Bundle, error) {
	names, err := fs.Glob(fsys, base+"*"+Ext)
	if err != nil {
		return nil, fmt.Errorf("resource: glob %s: %w", base, err)
	}
	b := &Bundle{base: base}
	var translations []string
	for _, name := range names {
		rest := strings.TrimSuffix(strings.TrimPrefix(path.Base(name), base), Ext)
		switch {
		case rest == "":
			keys, table, err := readTable(fsys, name)
			if err != nil {
				return nil, err
			}
			b.keys = keys
			b.tags = append([]language.Tag{language.Und}, b.tags...)
			b.tables = append([]map[string]string{table}, b.tables...)
		case strings.HasPrefix(rest, "."):
			translations = append(translations, name)
		}
	}
	if b.tables == nil {
		return nil, fmt.Errorf("resource: missing canonical bundle %s%s", base, Ext)
	}
	for _, name := range translations {
		raw := strings.TrimSuffix(strings.TrimPrefix(path.Base(name), base+"."), Ext)
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("resource: bundle %s: invalid language tag %q: %w", name, raw, err)
		}
		_, table, err := readTable(fsys, name)
		if err != nil {
			return nil, err
		}
		b.tags = append(b.tags, tag)
		b.tables = append(b.tables, table)
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// MustLoad is like Load but panics on error. It is meant for package
// level variables in generated code.
func MustLoad(fsys fs.FS, base string) *Bundle {
	b, err := Load(fsys, base)
	if err != nil {
		panic(err)
	}
	return b
}

// Base returns the base name of the bundle files.
func (b *Bundle) Base() string { return b.base }

// Keys returns the keys of the canonical table in file order.
func (b *Bundle) Keys() []string {
	return append([]string(nil), b.keys...)
}

// Tags returns the languages of the translations, canonical excluded.
func (b *Bundle) Tags() []language.Tag {
	return append([]language.Tag(nil), b.tags[1:]...)
}

// String returns the text for key in the current locale.
func (b *Bundle) String(key string) string {
	return b.Lookup(key, CurrentLocale())
}

// Lookup returns the text for key in the table best matching the preferred
// languages. It falls back to the canonical table, and to the key itself
// when no table defines it.
func (b *Bundle) Lookup(key string, preferred ...language.Tag) string {
	if len(b.tables) > 1 && len(preferred) > 0 {
		_, idx, conf := b.matcher.Match(preferred...)
		if conf != language.No && idx > 0 {
			if v, ok := b.tables[idx][key]; ok {
				return v
			}
		}
	}
	if v, ok := b.tables[0][key]; ok {
		return v
	}
	return key
}

func readTable(fsys fs.FS, name string) ([]string, map[string]string, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, nil, fmt.Errorf("resource: read %s: %w", name, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("resource: decode %s: %w", name, err)
	}
	table := make(map[string]string)
	if len(doc.Content) == 0 {
		return nil, table, nil
	}
	m := doc.Content[0]
	if m.Kind != yaml.MappingNode {
		return nil, nil, fmt.Errorf("resource: decode %s: expected a mapping", name)
	}
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		k, v := m.Content[i].Value, m.Content[i+1].Value
		if _, dup := table[k]; !dup {
			keys = append(keys, k)
		}
		table[k] = v
	}
	return keys, table, nil
}
