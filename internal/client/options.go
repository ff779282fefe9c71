package client

import (
	"log/slog"

	"github.com/hanpama/qlient/internal/schema"
	"github.com/hanpama/qlient/internal/transport"
)

// Options configures a Client.
//
// Defaults:
// - Schema:     fetched through the transport with the introspection query
// - Logger:     slog.Default()
// - Validation: off
type Options struct {
	Schema             *schema.Schema
	SchemaFile         string
	IntrospectionQuery string
	Subscriber         transport.Subscriber
	Plugins            []Plugin
	Logger             *slog.Logger
	Validate           bool
}

// Option mutates Options.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{Logger: slog.Default()}
}

// WithSchema skips introspection and uses s.
func WithSchema(s *schema.Schema) Option { return func(o *Options) { o.Schema = s } }

// WithSchemaFile loads a saved introspection result instead of fetching one.
func WithSchemaFile(path string) Option { return func(o *Options) { o.SchemaFile = path } }

func WithIntrospectionQuery(q string) Option       { return func(o *Options) { o.IntrospectionQuery = q } }
func WithSubscriber(s transport.Subscriber) Option { return func(o *Options) { o.Subscriber = s } }
func WithPlugins(p ...Plugin) Option               { return func(o *Options) { o.Plugins = append(o.Plugins, p...) } }
func WithLogger(l *slog.Logger) Option             { return func(o *Options) { o.Logger = l } }

// WithValidation checks every document against the schema before sending.
func WithValidation(on bool) Option { return func(o *Options) { o.Validate = on } }
