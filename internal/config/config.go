package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/joeshaw/envdecode"

	"github.com/jacoelho/esq/internal/exit"
	"github.com/jacoelho/esq/internal/httpclient"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultHost    = "http://localhost:9200"

	OutputFlat = "flat"
	OutputJSON = "json"
)

var (
	ErrNoArguments    = errors.New("no arguments provided")
	ErrNoCommand      = errors.New("no command specified")
	ErrUnknownCommand = errors.New("unknown command")
	ErrArguments      = errors.New("wrong number of arguments")
	ErrInvalidOutput  = errors.New("output must be flat or json")
	ErrEmptyHost      = errors.New("host cannot be empty")
)

// arity lists the accepted positional argument counts per command.
var arity = map[string][2]int{
	"search":       {1, 2},
	"get":          {3, 3},
	"exists":       {1, 1},
	"create-index": {1, 2},
	"delete-index": {1, 1},
	"open-index":   {1, 1},
	"close-index":  {1, 1},
	"bulk":         {2, 2},
}

// Config is the resolved esq configuration. Values come from the YAML file,
// then the environment, then flags, each layer overriding the previous one.
type Config struct {
	Command string
	Args    []string

	Hosts     []string
	HostsFile string

	Debug          bool
	Insecure       bool
	CACertFile     string
	RequestTimeout time.Duration
	RateLimit      float64

	Select string
	Times  bool
	Output string
}

// fileConfig is the layout of the -config YAML file.
type fileConfig struct {
	Hosts     []string `yaml:"hosts"`
	HostsFile string   `yaml:"hosts_file"`
	Timeout   string   `yaml:"timeout"`
	RateLimit float64  `yaml:"rate_limit"`
	Insecure  bool     `yaml:"insecure"`
	CACert    string   `yaml:"cacert"`
	Select    string   `yaml:"select"`
	Times     bool     `yaml:"times"`
	Output    string   `yaml:"output"`
}

// envConfig has no defaults so that unset variables leave lower layers alone.
type envConfig struct {
	Hosts     string        `env:"ESQ_HOSTS"`
	HostsFile string        `env:"ESQ_HOSTS_FILE"`
	Timeout   time.Duration `env:"ESQ_TIMEOUT"`
	RateLimit float64       `env:"ESQ_RATE_LIMIT"`
	Insecure  bool          `env:"ESQ_INSECURE"`
	CACert    string        `env:"ESQ_CACERT"`
	Output    string        `env:"ESQ_OUTPUT"`
}

func defaults() *Config {
	return &Config{
		RequestTimeout: DefaultTimeout,
		Output:         OutputFlat,
	}
}

func (c *Config) TLSConfig() (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: c.Insecure,
	}

	if c.CACertFile != "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		}

		pem, err := os.ReadFile(c.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate file %s: %w", c.CACertFile, err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("failed to parse CA certificate from %s", c.CACertFile)
		}

		tlsConfig.RootCAs = pool
	}

	return tlsConfig, nil
}

func (c *Config) HTTPClient() (*http.Client, error) {
	tlsConfig, err := c.TLSConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
	}

	return httpclient.New(httpclient.Options{
		TLSConfig: tlsConfig,
		Timeout:   c.RequestTimeout,
	}), nil
}

// Logger writes text logs to w, at debug level when -debug is set.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (c *Config) Validate() error {
	if c.Command == "" {
		return ErrNoCommand
	}
	bounds, ok := arity[c.Command]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, c.Command)
	}
	if n := len(c.Args); n < bounds[0] || n > bounds[1] {
		return fmt.Errorf("%w: %s takes %s, got %d", ErrArguments, c.Command, describeArity(bounds), n)
	}

	if c.Output != OutputFlat && c.Output != OutputJSON {
		return fmt.Errorf("%w, got: %s", ErrInvalidOutput, c.Output)
	}
	if slices.Contains(c.Hosts, "") {
		return ErrEmptyHost
	}

	if c.HostsFile != "" {
		if _, err := os.Stat(c.HostsFile); err != nil {
			return fmt.Errorf("hosts file %s not found: %w", c.HostsFile, err)
		}
	}
	if c.CACertFile != "" {
		if _, err := os.Stat(c.CACertFile); err != nil {
			return fmt.Errorf("CA certificate file %s not found: %w", c.CACertFile, err)
		}
	}

	return nil
}

func describeArity(bounds [2]int) string {
	if bounds[0] == bounds[1] {
		return fmt.Sprintf("%d arguments", bounds[0])
	}
	return fmt.Sprintf("%d to %d arguments", bounds[0], bounds[1])
}

// hostsFlag collects repeated -host values.
type hostsFlag []string

func (h *hostsFlag) String() string {
	return strings.Join(*h, ",")
}

func (h *hostsFlag) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return ErrEmptyHost
	}
	*h = append(*h, value)
	return nil
}

// Parse resolves the configuration from the YAML file, the environment and
// args. It returns an exit result instead of a config when parsing fails or
// help is requested.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Usagef("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		configFile = fs.String("config", "", "Path to a YAML configuration file")
		hostList   hostsFlag
		hostsFile  = fs.String("hosts-file", "", "File listing one host URL per line, reloaded on change")
		timeout    = fs.Duration("timeout", DefaultTimeout, "HTTP request timeout")
		rateLimit  = fs.Float64("rate-limit", 0, "Rate limit in requests per second (0 for unlimited)")
		insecure   = fs.Bool("insecure", false, "Skip TLS certificate verification")
		caCertFile = fs.String("cacert", "", "Path to CA certificate file for TLS verification")
		debug      = fs.Bool("debug", false, "Log requests and responses")
		selectExpr = fs.String("select", "", "JSONPath expression applied to each hit source")
		times      = fs.Bool("times", false, "Decode RFC 3339 strings as timestamps")
		output     = fs.String("output", OutputFlat, "Output format: flat or json")
	)
	fs.Var(&hostList, "host", "Server URL (can be used multiple times)")

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Usagef("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	cfg := defaults()

	if *configFile != "" {
		if err := cfg.loadFile(*configFile); err != nil {
			return nil, exit.Errorf("Error: failed to load config file: %v\n", err)
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, exit.Errorf("Error: failed to read environment: %v\n", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Hosts = hostList
		case "hosts-file":
			cfg.HostsFile = *hostsFile
		case "timeout":
			cfg.RequestTimeout = *timeout
		case "rate-limit":
			cfg.RateLimit = *rateLimit
		case "insecure":
			cfg.Insecure = *insecure
		case "cacert":
			cfg.CACertFile = *caCertFile
		case "select":
			cfg.Select = *selectExpr
		case "times":
			cfg.Times = *times
		case "output":
			cfg.Output = *output
		}
	})
	cfg.Debug = *debug

	if len(cfg.Hosts) == 0 && cfg.HostsFile == "" {
		cfg.Hosts = []string{DefaultHost}
	}

	positional := fs.Args()
	if len(positional) > 0 {
		cfg.Command = positional[0]
		cfg.Args = positional[1:]
	}

	if err := cfg.Validate(); err != nil {
		return nil, exit.Usagef("Error: %v\n\n%s", err, Usage())
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(file.Hosts) > 0 {
		c.Hosts = file.Hosts
	}
	if file.HostsFile != "" {
		c.HostsFile = file.HostsFile
	}
	if file.Timeout != "" {
		timeout, err := time.ParseDuration(file.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", file.Timeout, err)
		}
		c.RequestTimeout = timeout
	}
	if file.RateLimit != 0 {
		c.RateLimit = file.RateLimit
	}
	if file.CACert != "" {
		c.CACertFile = file.CACert
	}
	if file.Select != "" {
		c.Select = file.Select
	}
	if file.Output != "" {
		c.Output = file.Output
	}
	c.Insecure = c.Insecure || file.Insecure
	c.Times = c.Times || file.Times

	return nil
}

func (c *Config) loadEnv() error {
	var env envConfig
	if err := envdecode.Decode(&env); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return nil
		}
		return err
	}

	if env.Hosts != "" {
		c.Hosts = splitHosts(env.Hosts)
	}
	if env.HostsFile != "" {
		c.HostsFile = env.HostsFile
	}
	if env.Timeout != 0 {
		c.RequestTimeout = env.Timeout
	}
	if env.RateLimit != 0 {
		c.RateLimit = env.RateLimit
	}
	if env.CACert != "" {
		c.CACertFile = env.CACert
	}
	if env.Output != "" {
		c.Output = env.Output
	}
	c.Insecure = c.Insecure || env.Insecure

	return nil
}

func splitHosts(raw string) []string {
	var out []string
	for _, host := range strings.Split(raw, ",") {
		if host = strings.TrimSpace(host); host != "" {
			out = append(out, host)
		}
	}
	return out
}

func Usage() string {
	return `esq - Elasticsearch query tool

Usage: esq [options] <command> [args]

Commands:
  search <index> [query.yaml|query.json]   Run a search, match_all when no query file is given
  get <index> <type> <id>                  Fetch a document
  exists <index>                           Exit 0 when the index exists, 3 otherwise
  create-index <index> [settings.yaml]     Create an index
  delete-index <index>                     Delete an index
  open-index <index>                       Open a closed index
  close-index <index>                      Close an index
  bulk <index> <docs.ndjson>               Index one document per line

Options:
  --config FILE           YAML configuration file
  --host URL              Server URL (can be used multiple times, default: http://localhost:9200)
  --hosts-file FILE       File listing one host URL per line, reloaded on change
  --timeout DURATION      HTTP request timeout (default: 30s)
  --rate-limit N          Rate limit in requests per second (0 for unlimited)
  --insecure              Skip TLS certificate verification
  --cacert FILE           Path to CA certificate file for TLS verification
  --debug                 Log requests and responses
  --select JSONPATH       JSONPath expression applied to each hit source
  --times                 Decode RFC 3339 strings as timestamps
  --output FORMAT         flat (default) or json
  -h, --help              Show this help message

Environment:
  ESQ_HOSTS, ESQ_HOSTS_FILE, ESQ_TIMEOUT, ESQ_RATE_LIMIT, ESQ_INSECURE,
  ESQ_CACERT, ESQ_OUTPUT override the config file; flags override both.

Examples:
  esq search logs                                # First hits of every document
  esq -host http://es:9200 search logs q.yaml    # Search with a query file
  esq -select '$.user.name' search logs          # Print one field per hit
  esq -output json get logs _doc 1               # Document as JSON`
}
