package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/hanpama/fieldplan/internal/catalog"
	"github.com/hanpama/fieldplan/internal/eventbus"
	"github.com/hanpama/fieldplan/internal/events"
	"github.com/hanpama/fieldplan/internal/executor"
	"github.com/hanpama/fieldplan/internal/language"
	"github.com/hanpama/fieldplan/internal/otel"
	"github.com/hanpama/fieldplan/internal/server"
)

const rootUsage = `fieldplan - project JSON documents onto GraphQL object types

USAGE:
  fieldplan <command> [flags]

COMMANDS:
  serve            Run the HTTP projection service
  fields           Print the compiled field list of a type
  serialize        Project a JSON document read from a file or stdin
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  -graphql.schema <file>        GraphQL SDL file. Repeatable; at least one required
  -server.addr <addr>           HTTP listen address (default: :8080)
  -server.pretty                Pretty-print JSON responses
  -server.timeout <duration>    Per-request timeout, e.g. 10s (default: 10s)
  -server.max-body <bytes>      Maximum request body size; 0 is unlimited (default: 1048576)
  -server.cors <origin>         Allowed CORS origin, * for any. Repeatable
  -otel.endpoint <addr>         OTLP collector endpoint
  -otel.service <name>          OpenTelemetry service name (default: fieldplan)
  -log.events                   Log serialization events
`

const fieldsUsage = `fields FLAGS:
  -graphql.schema <file>   GraphQL SDL file. Repeatable; at least one required
  -type <name>             Object type (required)
  -exclude <a,b,...>       Fields to leave out
`

const serializeUsage = `serialize FLAGS:
  -graphql.schema <file>   GraphQL SDL file. Repeatable; at least one required
  -type <name>             Object type (required)
  -exclude <a,b,...>       Fields to leave out
  -in <file>               JSON input; an array is serialized in batch mode (default: stdin)
  -pretty                  Pretty-print the output
  -log.events              Log serialization events
`

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	stdin  io.Reader = os.Stdin
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	global := flag.NewFlagSet("fieldplan", flag.ContinueOnError)
	global.SetOutput(new(bytes.Buffer)) // silence automatic output
	if err := global.Parse(args); err != nil {
		fmt.Fprint(stderr, rootUsage)
		return err
	}
	remaining := global.Args()
	if len(remaining) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := remaining[0]
	cmdArgs := remaining[1:]
	switch cmd {
	case "serve":
		return cmdServe(cmdArgs)
	case "fields":
		return cmdFields(cmdArgs)
	case "serialize":
		return cmdSerialize(cmdArgs)
	case "help":
		return cmdHelp(cmdArgs)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "fields":
		fmt.Fprint(stdout, fieldsUsage)
	case "serialize":
		fmt.Fprint(stdout, serializeUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

type stringListFlag []string

func (s *stringListFlag) String() string { return "" }

func (s *stringListFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// loadCatalog parses the SDL files and compiles their object types. excluded
// fields apply to typeName only.
func loadCatalog(files []string, typeName, excluded string) (*catalog.Catalog, error) {
	sources := make([]*language.Source, 0, len(files))
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, &language.Source{Name: f, Input: string(b)})
	}
	doc, err := language.ParseSchemas(sources...)
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	var opts []catalog.Option
	if names := splitList(excluded); len(names) > 0 {
		opts = append(opts, catalog.WithExclude(typeName, names...))
	}
	return catalog.Build(doc, opts...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// logEvents prints serialization events with the standard logger.
func logEvents() {
	eventbus.Subscribe(func(ctx context.Context, e events.SchemaCompiled) {
		log.Printf("compiled %s fields=%v in %s", e.Schema, e.Fields, e.Duration)
	})
	eventbus.Subscribe(func(ctx context.Context, e events.SerializeFinish) {
		if e.Err != nil {
			log.Printf("serialize %s many=%t items=%d failed in %s: %v", e.Schema, e.Many, e.Items, e.Duration, e.Err)
			return
		}
		log.Printf("serialize %s many=%t items=%d in %s", e.Schema, e.Many, e.Items, e.Duration)
	})
	eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
		log.Printf("%s %s %d in %s", e.Request.Method, e.Request.URL.Path, e.Status, e.Duration)
	})
}

func cmdServe(args []string) error {
	addr := ":8080"
	pretty := false
	timeout := 10 * time.Second
	maxBody := int64(1 << 20)
	otelEndpoint := ""
	otelService := "fieldplan"
	logEvts := false
	var schemaFiles, corsOrigins stringListFlag

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "graphql.schema", "GraphQL SDL file")
	fs.StringVar(&addr, "server.addr", addr, "HTTP listen address")
	fs.BoolVar(&pretty, "server.pretty", pretty, "Pretty-print JSON responses")
	fs.DurationVar(&timeout, "server.timeout", timeout, "Per-request timeout")
	fs.Int64Var(&maxBody, "server.max-body", maxBody, "Maximum request body size")
	fs.Var(&corsOrigins, "server.cors", "Allowed CORS origin")
	fs.StringVar(&otelEndpoint, "otel.endpoint", otelEndpoint, "OTLP collector endpoint")
	fs.StringVar(&otelService, "otel.service", otelService, "OpenTelemetry service name")
	fs.BoolVar(&logEvts, "log.events", logEvts, "Log serialization events")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}
	if len(schemaFiles) == 0 {
		fmt.Fprint(stderr, serveUsage)
		return fmt.Errorf("-graphql.schema is required")
	}

	eventbus.Use(eventbus.New())
	shutdown, err := otel.Setup(otelEndpoint, otelService)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()
	if logEvts {
		logEvents()
	}

	cat, err := loadCatalog(schemaFiles, "", "")
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	var sopts []server.Option
	if pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if timeout > 0 {
		sopts = append(sopts, server.WithTimeout(timeout))
	}
	if maxBody > 0 {
		sopts = append(sopts, server.WithMaxBodyBytes(maxBody))
	}
	if len(corsOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(corsOrigins...))
	}
	h, err := server.New(cat, sopts...)
	if err != nil {
		return fmt.Errorf("server init: %w", err)
	}

	log.Printf("serving %d types on %s", len(cat.Names()), addr)
	return http.ListenAndServe(addr, h)
}

func cmdFields(args []string) error {
	typeName := ""
	excluded := ""
	var schemaFiles stringListFlag
	fs := flag.NewFlagSet("fields", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "graphql.schema", "GraphQL SDL file")
	fs.StringVar(&typeName, "type", typeName, "Object type")
	fs.StringVar(&excluded, "exclude", excluded, "Fields to leave out")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, fieldsUsage)
		return err
	}
	if len(schemaFiles) == 0 || typeName == "" {
		fmt.Fprint(stderr, fieldsUsage)
		return fmt.Errorf("-graphql.schema and -type are required")
	}

	cat, err := loadCatalog(schemaFiles, typeName, excluded)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	s, ok := cat.Schema(typeName)
	if !ok {
		return fmt.Errorf("unknown type %q", typeName)
	}
	for _, name := range s.Plan().Names() {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func cmdSerialize(args []string) error {
	typeName := ""
	excluded := ""
	inFile := ""
	pretty := false
	logEvts := false
	var schemaFiles stringListFlag
	fs := flag.NewFlagSet("serialize", flag.ContinueOnError)
	fs.SetOutput(new(bytes.Buffer))
	fs.Var(&schemaFiles, "graphql.schema", "GraphQL SDL file")
	fs.StringVar(&typeName, "type", typeName, "Object type")
	fs.StringVar(&excluded, "exclude", excluded, "Fields to leave out")
	fs.StringVar(&inFile, "in", inFile, "JSON input file")
	fs.BoolVar(&pretty, "pretty", pretty, "Pretty-print the output")
	fs.BoolVar(&logEvts, "log.events", logEvts, "Log serialization events")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serializeUsage)
		return err
	}
	if len(schemaFiles) == 0 || typeName == "" {
		fmt.Fprint(stderr, serializeUsage)
		return fmt.Errorf("-graphql.schema and -type are required")
	}
	if logEvts {
		eventbus.Use(eventbus.New())
		logEvents()
	}

	cat, err := loadCatalog(schemaFiles, typeName, excluded)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	s, ok := cat.Schema(typeName)
	if !ok {
		return fmt.Errorf("unknown type %q", typeName)
	}

	in := stdin
	if inFile != "" {
		f, err := os.Open(inFile)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	dec := json.NewDecoder(in)
	dec.UseNumber()
	var src any
	if err := dec.Decode(&src); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	_, many := src.([]any)

	out, err := executor.Execute(context.Background(), s, src, many)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", typeName, err)
	}
	enc := json.NewEncoder(stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}
