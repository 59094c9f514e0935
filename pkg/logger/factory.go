package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the slog handler New builds.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Environment names understood by WithEnvironment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Option configures New.
type Option func(*settings)

type settings struct {
	level  slog.Leveler
	format Format
	out    io.Writer
	attrs  []slog.Attr
	source bool
}

func WithLevel(l slog.Leveler) Option {
	return func(s *settings) {
		if l != nil {
			s.level = l
		}
	}
}

// WithFormat panics on anything but FormatJSON or FormatText so a bad value
// stops the process at startup.
func WithFormat(f Format) Option {
	if f != FormatJSON && f != FormatText {
		panic(fmt.Sprintf("logger: unknown format %q", f))
	}
	return func(s *settings) { s.format = f }
}

// WithOutput redirects records to w. A nil writer keeps the default stdout.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.out = w
		}
	}
}

// WithAttr attaches attrs to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(s *settings) { s.attrs = append(s.attrs, attrs...) }
}

// WithSource adds the caller position to records.
func WithSource() Option {
	return func(s *settings) { s.source = true }
}

// WithEnvironment applies a preset keyed by deployment environment and tags
// records with service and env. Unknown names get the development preset.
func WithEnvironment(env, service string) Option {
	return func(s *settings) {
		name, level, format := EnvDevelopment, slog.LevelDebug, FormatText
		switch env {
		case EnvProduction, "prod":
			name, level, format = EnvProduction, slog.LevelInfo, FormatJSON
		case EnvStaging, "stage":
			name, level, format = EnvStaging, slog.LevelInfo, FormatJSON
		}
		s.level, s.format = level, format
		if service != "" {
			s.attrs = append(s.attrs, slog.String("service", service))
		}
		s.attrs = append(s.attrs, slog.String("env", name))
	}
}

func WithDevelopment(service string) Option { return WithEnvironment(EnvDevelopment, service) }

func WithProduction(service string) Option { return WithEnvironment(EnvProduction, service) }

// New returns a logger that also writes attributes stored with ContextWith.
// Defaults are JSON on stdout at info level.
func New(opts ...Option) *slog.Logger {
	s := settings{level: slog.LevelInfo, format: FormatJSON, out: os.Stdout}
	for _, opt := range opts {
		opt(&s)
	}

	ho := &slog.HandlerOptions{Level: s.level, AddSource: s.source}
	var h slog.Handler = slog.NewJSONHandler(s.out, ho)
	if s.format == FormatText {
		h = slog.NewTextHandler(s.out, ho)
	}
	if len(s.attrs) > 0 {
		h = h.WithAttrs(s.attrs)
	}
	return slog.New(contextHandler{Handler: h})
}

// Discard returns a logger with every level disabled.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
