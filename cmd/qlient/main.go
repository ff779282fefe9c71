package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/hanpama/qlient/internal/client"
	"github.com/hanpama/qlient/internal/config"
	"github.com/hanpama/qlient/internal/eventbus"
	"github.com/hanpama/qlient/internal/introspection"
	"github.com/hanpama/qlient/internal/operation"
	"github.com/hanpama/qlient/internal/otel"
	"github.com/hanpama/qlient/internal/proxy"
	"github.com/hanpama/qlient/internal/schema"
	"github.com/hanpama/qlient/internal/selection"
	"github.com/hanpama/qlient/internal/transport"
	"github.com/hanpama/qlient/internal/transport/httptp"
	"github.com/hanpama/qlient/internal/transport/wstp"
)

const rootUsage = `qlient - build and run GraphQL operations from a schema

USAGE:
  qlient <command> [flags]

COMMANDS:
  introspect       Fetch the schema of an endpoint and save it
  build            Print the document synthesized for a root field
  exec             Build and send a query or mutation
  subscribe        Build a subscription and print every payload
  help             Show help for any command
`

const connUsage = `  -config <file>           YAML config file
  -endpoint <url>          GraphQL HTTP endpoint
  -ws-endpoint <url>       Websocket endpoint for subscriptions (default: endpoint)
  -schema <file>           Introspection result to use instead of fetching
  -header <Name: value>    Extra request header. Repeatable
  -timeout <duration>      HTTP request timeout, e.g. 10s
  -validate                Validate documents before sending
  -log.level <level>       debug, info, warn or error (default: info)
  -otel.endpoint <addr>    OTLP collector endpoint
  -otel.service <name>     OpenTelemetry service name (default: qlient)
`

const introspectUsage = `introspect FLAGS:
` + connUsage + `  -out <file>              Write to file (default: stdout)
  -format <json|sdl>       Output format (default: json)
  -legacy                  Use the introspection query for older servers
`

const operationFlagsUsage = `  -field <name>            Root field to call (required)
  -args <json>             Arguments as a JSON object
  -fields <selection>      Field names ("id title") or a GraphQL selection ("{ id }")
  -name <name>             Operation name
`

const buildUsage = `build FLAGS:
` + connUsage + `  -kind <kind>             query, mutation or subscription (default: query)
` + operationFlagsUsage

const execUsage = `exec FLAGS:
` + connUsage + `  -kind <kind>             query or mutation (default: query)
` + operationFlagsUsage

const subscribeUsage = `subscribe FLAGS:
` + connUsage + operationFlagsUsage

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	return c.run(ctx, args)
}

type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) run(ctx context.Context, args []string) error {
	global := flagSet("qlient")
	if err := global.Parse(args); err != nil {
		fmt.Fprint(c.stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(c.stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "introspect":
		return c.cmdIntrospect(ctx, cmdArgs)
	case "build":
		return c.cmdBuild(ctx, cmdArgs)
	case "exec":
		return c.cmdExec(ctx, cmdArgs)
	case "subscribe":
		return c.cmdSubscribe(ctx, cmdArgs)
	case "help":
		return c.cmdHelp(cmdArgs)
	default:
		fmt.Fprint(c.stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "introspect":
		fmt.Fprint(c.stdout, introspectUsage)
	case "build":
		fmt.Fprint(c.stdout, buildUsage)
	case "exec":
		fmt.Fprint(c.stdout, execUsage)
	case "subscribe":
		fmt.Fprint(c.stdout, subscribeUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func (c *cli) cmdIntrospect(ctx context.Context, args []string) error {
	fs := flagSet("introspect")
	var conn connFlags
	conn.register(fs)
	out := ""
	format := "json"
	legacy := false
	fs.StringVar(&out, "out", out, "Write to file")
	fs.StringVar(&format, "format", format, "Output format")
	fs.BoolVar(&legacy, "legacy", legacy, "Use the legacy introspection query")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(c.stderr, introspectUsage)
		return err
	}
	if format != "json" && format != "sdl" {
		fmt.Fprint(c.stderr, introspectUsage)
		return fmt.Errorf("-format must be json or sdl, got %q", format)
	}
	cfg, err := conn.config()
	if err != nil {
		return err
	}
	if cfg.Endpoint == "" {
		fmt.Fprint(c.stderr, introspectUsage)
		return fmt.Errorf("-endpoint is required")
	}
	env, err := c.setup(cfg)
	if err != nil {
		return err
	}
	defer env.close()

	tp, err := httptp.New(cfg.Endpoint, cfg.HTTPOptions()...)
	if err != nil {
		return err
	}
	query := introspection.Query
	if legacy {
		query = introspection.LegacyQuery
	}
	s, _, err := introspection.Fetch(ctx, tp, query)
	if err != nil {
		return err
	}
	env.log.Info("schema fetched", "endpoint", cfg.Endpoint, "types", len(s.Types))

	var payload []byte
	if format == "sdl" {
		payload = []byte(schema.Render(s))
	} else if payload, err = introspection.Marshal(s); err != nil {
		return err
	}
	if out == "" {
		_, err = c.stdout.Write(payload)
		return err
	}
	return os.WriteFile(out, payload, 0o644)
}

func (c *cli) cmdBuild(ctx context.Context, args []string) error {
	fs := flagSet("build")
	var conn connFlags
	var op opFlags
	conn.register(fs)
	op.register(fs, true)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(c.stderr, buildUsage)
		return err
	}
	cfg, err := conn.config()
	if err != nil {
		return err
	}
	env, err := c.setup(cfg)
	if err != nil {
		return err
	}
	defer env.close()

	cl, err := env.newClient(ctx, cfg, false)
	if err != nil {
		return err
	}
	doc, err := op.build(cl.Proxy())
	if err != nil {
		fmt.Fprint(c.stderr, buildUsage)
		return err
	}
	fmt.Fprintln(c.stdout, doc.Query())
	vars, err := json.MarshalIndent(doc.VariableValues(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, string(vars))
	return nil
}

func (c *cli) cmdExec(ctx context.Context, args []string) error {
	fs := flagSet("exec")
	var conn connFlags
	var op opFlags
	conn.register(fs)
	op.register(fs, true)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(c.stderr, execUsage)
		return err
	}
	cfg, err := conn.config()
	if err != nil {
		return err
	}
	if cfg.Endpoint == "" {
		fmt.Fprint(c.stderr, execUsage)
		return fmt.Errorf("-endpoint is required")
	}
	env, err := c.setup(cfg)
	if err != nil {
		return err
	}
	defer env.close()

	cl, err := env.newClient(ctx, cfg, false)
	if err != nil {
		return err
	}
	doc, err := op.build(cl.Proxy())
	if err != nil {
		fmt.Fprint(c.stderr, execUsage)
		return err
	}
	res, err := cl.Execute(ctx, doc)
	if err != nil {
		return err
	}
	if err := c.printJSON(res.Raw()); err != nil {
		return err
	}
	if res.HasErrors() {
		return fmt.Errorf("response carried %d error(s)", len(res.Errors()))
	}
	return nil
}

func (c *cli) cmdSubscribe(ctx context.Context, args []string) error {
	fs := flagSet("subscribe")
	var conn connFlags
	var op opFlags
	conn.register(fs)
	op.register(fs, false)
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(c.stderr, subscribeUsage)
		return err
	}
	op.kind = string(operation.Subscription)
	cfg, err := conn.config()
	if err != nil {
		return err
	}
	if cfg.SubscriptionEndpoint() == "" {
		fmt.Fprint(c.stderr, subscribeUsage)
		return fmt.Errorf("-endpoint or -ws-endpoint is required")
	}
	env, err := c.setup(cfg)
	if err != nil {
		return err
	}
	defer env.close()

	cl, err := env.newClient(ctx, cfg, true)
	if err != nil {
		return err
	}
	doc, err := op.build(cl.Proxy())
	if err != nil {
		fmt.Fprint(c.stderr, subscribeUsage)
		return err
	}
	payloads, err := cl.Subscribe(ctx, doc)
	if err != nil {
		return err
	}
	n := 0
	for p := range payloads {
		n++
		if err := c.printJSON(p.Raw()); err != nil {
			return err
		}
	}
	env.log.Info("subscription ended", "payloads", n)
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// flagSet returns a FlagSet that reports errors instead of exiting and
// leaves usage output to the caller.
func flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	return fs
}

func (c *cli) printJSON(raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		buf.Reset()
		buf.Write(raw)
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(c.stdout)
	return err
}

// runtime holds what a command sets up before talking to an endpoint.
type runtime struct {
	log      *slog.Logger
	shutdown func(context.Context) error
}

func (c *cli) setup(cfg *config.Config) (*runtime, error) {
	logger := slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	eventbus.Use(eventbus.New())
	service := cfg.Otel.Service
	if service == "" {
		service = "qlient"
	}
	shutdown, err := otel.Setup(cfg.Otel.Endpoint, service)
	if err != nil {
		return nil, fmt.Errorf("otel setup: %w", err)
	}
	return &runtime{log: logger, shutdown: shutdown}, nil
}

func (r *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.shutdown(ctx); err != nil {
		r.log.Warn("otel shutdown", "error", err)
	}
}

func (r *runtime) newClient(ctx context.Context, cfg *config.Config, subscribe bool) (*client.Client, error) {
	opts := append(cfg.ClientOptions(), client.WithLogger(r.log))
	var tp transport.Transport
	if cfg.Endpoint != "" {
		h, err := httptp.New(cfg.Endpoint, cfg.HTTPOptions()...)
		if err != nil {
			return nil, err
		}
		tp = h
	}
	if subscribe {
		ws, err := wstp.New(cfg.SubscriptionEndpoint(), cfg.WSOptions()...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, client.WithSubscriber(ws))
	}
	return client.New(ctx, tp, opts...)
}

// connFlags are shared by every command that reaches an endpoint. Values
// given on the command line override the config file.
type connFlags struct {
	configFile   string
	endpoint     string
	wsEndpoint   string
	schemaFile   string
	headers      headerFlag
	timeout      time.Duration
	validate     bool
	logLevel     string
	otelEndpoint string
	otelService  string
}

func (f *connFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configFile, "config", "", "YAML config file")
	fs.StringVar(&f.endpoint, "endpoint", "", "GraphQL HTTP endpoint")
	fs.StringVar(&f.wsEndpoint, "ws-endpoint", "", "Websocket endpoint")
	fs.StringVar(&f.schemaFile, "schema", "", "Introspection result file")
	fs.Var(&f.headers, "header", "Extra request header")
	fs.DurationVar(&f.timeout, "timeout", 0, "HTTP request timeout")
	fs.BoolVar(&f.validate, "validate", false, "Validate documents before sending")
	fs.StringVar(&f.logLevel, "log.level", "", "Log level")
	fs.StringVar(&f.otelEndpoint, "otel.endpoint", "", "OTLP collector endpoint")
	fs.StringVar(&f.otelService, "otel.service", "", "OpenTelemetry service name")
}

func (f *connFlags) config() (*config.Config, error) {
	cfg := &config.Config{}
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if f.endpoint != "" {
		cfg.Endpoint = f.endpoint
	}
	if f.wsEndpoint != "" {
		cfg.WSEndpoint = f.wsEndpoint
	}
	if f.schemaFile != "" {
		cfg.SchemaFile = f.schemaFile
	}
	if len(f.headers) > 0 && cfg.Headers == nil {
		cfg.Headers = map[string]string{}
	}
	for k, v := range f.headers {
		cfg.Headers[k] = v
	}
	if f.timeout != 0 {
		cfg.Timeout = f.timeout
	}
	if f.validate {
		cfg.ValidateDocs = true
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.otelEndpoint != "" {
		cfg.Otel.Endpoint = f.otelEndpoint
	}
	if f.otelService != "" {
		cfg.Otel.Service = f.otelService
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type opFlags struct {
	kind   string
	field  string
	args   string
	fields string
	name   string
}

func (f *opFlags) register(fs *flag.FlagSet, withKind bool) {
	if withKind {
		fs.StringVar(&f.kind, "kind", string(operation.Query), "Operation kind")
	}
	fs.StringVar(&f.field, "field", "", "Root field to call")
	fs.StringVar(&f.args, "args", "", "Arguments as a JSON object")
	fs.StringVar(&f.fields, "fields", "", "Selection")
	fs.StringVar(&f.name, "name", "", "Operation name")
}

func (f *opFlags) build(p *proxy.Proxy) (*operation.Document, error) {
	if f.field == "" {
		return nil, fmt.Errorf("-field is required")
	}
	kind, err := operation.ParseKind(f.kind)
	if err != nil {
		return nil, err
	}
	kwargs := map[string]any{}
	if f.args != "" {
		dec := json.NewDecoder(strings.NewReader(f.args))
		dec.UseNumber()
		if err := dec.Decode(&kwargs); err != nil {
			return nil, fmt.Errorf("-args: %w", err)
		}
		normalizeNumbers(kwargs)
	}
	if f.fields != "" {
		if strings.Contains(f.fields, "{") {
			set, err := selection.ParseGraphQL(f.fields)
			if err != nil {
				return nil, fmt.Errorf("-fields: %w", err)
			}
			kwargs[proxy.FieldsKey] = set
		} else {
			kwargs[proxy.FieldsKey] = f.fields
		}
	}
	if f.name != "" {
		kwargs[proxy.NameKey] = f.name
	}
	return p.Invoke(kind, f.field, kwargs)
}

// normalizeNumbers turns json.Number values into int64 when they are
// integral and float64 otherwise.
func normalizeNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		for k, e := range x {
			x[k] = normalizeNumbers(e)
		}
	case []any:
		for i, e := range x {
			x[i] = normalizeNumbers(e)
		}
	}
	return v
}

type headerFlag map[string]string

func (h *headerFlag) String() string { return "" }

func (h *headerFlag) Set(v string) error {
	name, value, ok := strings.Cut(v, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid header %q", v)
	}
	if *h == nil {
		*h = headerFlag{}
	}
	(*h)[name] = strings.TrimSpace(value)
	return nil
}
