package messages

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Keys of the texts the sign-in flow shows to users.
const (
	KeyRequestTimeout      = "timeout.request"
	KeyVerificationTimeout = "timeout.verification"
	KeyAlternateSignIn     = "action.alternate_sign_in"
	KeyGenericError        = "error.generic"
	KeyInvalidCredential   = "error.invalid_credential"
)

// DefaultLanguage is used when no bundled language matches the requested locale.
const DefaultLanguage = "en"

//go:embed locales/*.yaml
var bundled embed.FS

// Catalog resolves message keys to texts in one language, falling back to
// DefaultLanguage and finally to the key itself.
type Catalog struct {
	lang     string
	texts    map[string]string
	fallback map[string]string
}

// Option configures Load.
type Option func(*loadConfig)

type loadConfig struct {
	sources []fs.FS
}

// WithSource adds YAML files from fsys (root directory, *.yaml or *.yml).
// Later sources override earlier ones key by key, and all of them override the
// bundled texts.
func WithSource(fsys fs.FS) Option {
	return func(c *loadConfig) {
		if fsys != nil {
			c.sources = append(c.sources, fsys)
		}
	}
}

// Load builds a catalog for the bundled language closest to locale
// (a BCP 47 tag such as "vi-VN"; empty means DefaultLanguage).
func Load(locale string, opts ...Option) (*Catalog, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	sub, err := fs.Sub(bundled, "locales")
	if err != nil {
		return nil, errors.Join(ErrLoadFailed, err)
	}

	all := make(map[string]map[string]string)
	for _, src := range append([]fs.FS{sub}, cfg.sources...) {
		if err := loadDir(src, all); err != nil {
			return nil, err
		}
	}
	if _, ok := all[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoTranslations, DefaultLanguage)
	}

	lang := match(locale, all)
	return &Catalog{
		lang:     lang,
		texts:    all[lang],
		fallback: all[DefaultLanguage],
	}, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(locale string, opts ...Option) *Catalog {
	c, err := Load(locale, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load message catalog: %v", err))
	}
	return c
}

// Default returns the catalog for DefaultLanguage with bundled texts only.
func Default() *Catalog {
	return MustLoad(DefaultLanguage)
}

// Language returns the language the catalog resolved to.
func (c *Catalog) Language() string {
	return c.lang
}

// Has reports whether key has a text in the catalog language or the fallback.
func (c *Catalog) Has(key string) bool {
	if _, ok := c.texts[key]; ok {
		return true
	}
	_, ok := c.fallback[key]
	return ok
}

// Text returns the text for key formatted with args via fmt.Sprintf.
// Unknown keys return the key itself.
func (c *Catalog) Text(key string, args ...any) string {
	tmpl, ok := c.texts[key]
	if !ok {
		if tmpl, ok = c.fallback[key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

func match(locale string, all map[string]map[string]string) string {
	langs := make([]string, 0, len(all))
	for lang := range all {
		if lang != DefaultLanguage {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	langs = append([]string{DefaultLanguage}, langs...)

	tags := make([]language.Tag, len(langs))
	for i, l := range langs {
		tags[i] = language.Make(l)
	}

	if locale == "" {
		return DefaultLanguage
	}
	_, idx, conf := language.NewMatcher(tags).Match(language.Make(locale))
	if conf == language.No {
		return DefaultLanguage
	}
	return langs[idx]
}

func loadDir(fsys fs.FS, into map[string]map[string]string) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return errors.Join(ErrLoadFailed, err)
	}
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return errors.Join(ErrLoadFailed, err)
		}
		parsed, err := Parse(data)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		for lang, texts := range parsed {
			if into[lang] == nil {
				into[lang] = make(map[string]string, len(texts))
			}
			for k, v := range texts {
				into[lang][k] = v
			}
		}
	}
	return nil
}

// Parse decodes a YAML document of the form {lang: {nested keys: text}} into
// flat dotted keys per language.
func Parse(data []byte) (map[string]map[string]string, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrInvalidYAML, err)
	}
	if len(doc) == 0 {
		return nil, ErrNoTranslations
	}

	out := make(map[string]map[string]string, len(doc))
	for lang, v := range doc {
		tree, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: language %q must map keys to texts, got %T", ErrInvalidYAML, lang, v)
		}
		flat := make(map[string]string)
		if err := flatten("", tree, flat); err != nil {
			return nil, err
		}
		out[lang] = flat
	}
	return out, nil
}

func flatten(prefix string, tree map[string]any, out map[string]string) error {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case string:
			out[key] = val
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: key %q has unsupported value %T", ErrInvalidYAML, key, v)
		}
	}
	return nil
}
