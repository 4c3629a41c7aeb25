// Package cmd implements the configtree command-line interface.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/lixenwraith/configtree"
	"github.com/lixenwraith/configtree/internal/logging"
)

const (
	envFile    = "CONFIGTREE_FILE"
	envBackend = "CONFIGTREE_BACKEND"
)

// App holds state shared across commands.
type App struct {
	Config *configtree.Config
	Kind   configtree.Kind
	Masked bool
	Out    io.Writer
	Err    io.Writer
	// ReadSecret prompts for a value without echoing it.
	ReadSecret func(prompt string) (string, error)
}

// AppProvider lazily builds the App from flags on first use.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	// Captured from flags before Execute()
	Backend   string
	File      string
	Format    string
	AppName   string
	Bucket    string
	Type      string
	Masked    bool
	Enforce   bool
	LogLevel  string
	LogFormat string

	Out io.Writer
	Err io.Writer
	In  io.Reader
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with the given App.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{app: app, Out: app.Out, Err: app.Err}
}

func (p *AppProvider) init() (*App, error) {
	kind, err := configtree.ParseKind(p.Type)
	if err != nil {
		return nil, err
	}

	backend := p.Backend
	if backend == "" {
		backend = os.Getenv(envBackend)
	}
	file := p.File
	if file == "" {
		file = os.Getenv(envFile)
	}

	b := configtree.NewBuilder().
		WithApp(p.AppName).
		WithPath(file).
		WithFormat(p.Format).
		WithBucket(p.Bucket)
	switch {
	case backend != "":
		b.WithBackend(configtree.BackendKind(backend))
	case file != "":
		b.WithBackend(configtree.BackendFile)
	default:
		b.WithFileDiscovery(configtree.DefaultDiscoveryOptions(p.AppName))
	}
	if p.Enforce {
		b.WithEnforceRead()
	}

	cfg, err := b.Build()
	if err != nil {
		return nil, err
	}

	out := p.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := p.Err
	if errOut == nil {
		errOut = os.Stderr
	}
	in := p.In
	if in == nil {
		in = os.Stdin
	}

	return &App{
		Config:     cfg,
		Kind:       kind,
		Masked:     p.Masked,
		Out:        out,
		Err:        errOut,
		ReadSecret: secretReader(in, errOut),
	}, nil
}

// Session opens the store, runs fn and closes the store, reporting the
// first failure.
func (a *App) Session(fn func(cfg *configtree.Config) error) (err error) {
	if err := a.Config.Open(false); err != nil {
		return err
	}
	defer func() {
		if cerr := a.Config.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(a.Config)
}

// secretReader reads without echo from a terminal, or one line otherwise.
func secretReader(in io.Reader, prompt io.Writer) func(string) (string, error) {
	return func(msg string) (string, error) {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			fmt.Fprint(prompt, msg)
			secret, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(prompt)
			if err != nil {
				return "", fmt.Errorf("failed to read secret: %w", err)
			}
			return string(secret), nil
		}

		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" && errors.Is(err, io.EOF) {
			return "", errors.New("no secret provided on stdin")
		}
		return line, nil
	}
}

// Execute runs the CLI on the process arguments and standard streams.
func Execute() error {
	return ExecuteArgs(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// ExecuteArgs runs the CLI with explicit arguments and streams.
func ExecuteArgs(args []string, in io.Reader, out, errOut io.Writer) error {
	provider := &AppProvider{
		Out: out,
		Err: errOut,
		In:  in,
	}
	rootCmd := newRootCmd(provider)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	return rootCmd.Execute()
}

// newRootCmd creates the root command with all subcommands.
func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "configtree",
		Short: "Read and write typed application settings",
		Long: `configtree reads and writes typed key-value settings in a TOML, JSON or
YAML file, a bbolt database or a SQLite database.

Without --file or --backend an existing config.{toml,json,yaml,yml} is
searched for in $<APP>_CONFIG, the current directory and the XDG config
directories for --app. If none exists the platform default store is used:
a bbolt database under %APPDATA% on Windows, a TOML file under
$XDG_CONFIG_HOME elsewhere. CONFIGTREE_FILE and CONFIGTREE_BACKEND
provide defaults for --file and --backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			errOut := provider.Err
			if errOut == nil {
				errOut = os.Stderr
			}
			logging.InitWriter(errOut, provider.LogLevel, provider.LogFormat)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&provider.Backend, "backend", "", "Store backend: auto, file, bolt, sqlite, memory")
	pf.StringVarP(&provider.File, "file", "f", "", "Store location (default: platform path for --app)")
	pf.StringVar(&provider.Format, "format", "", "File encoding: toml, json, yaml (default: detect)")
	pf.StringVar(&provider.AppName, "app", "configtree", "Application name for the default store location")
	pf.StringVar(&provider.Bucket, "bucket", "", "Bucket name for the bolt backend")
	pf.StringVarP(&provider.Type, "type", "t", "string", "Value type: string, bool, uint32, int32, uint64, int64")
	pf.BoolVar(&provider.Masked, "masked", false, "Hide values in log output")
	pf.BoolVar(&provider.Enforce, "enforce", false, "Treat a failed read as fatal")
	pf.StringVar(&provider.LogLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&provider.LogFormat, "log-format", "text", "Log format: text, json")

	rootCmd.AddCommand(
		newGetCmd(provider),
		newSetCmd(provider),
		newHasCmd(provider),
		newDeleteCmd(provider),
		newListCmd(provider),
		newDumpCmd(provider),
	)

	return rootCmd
}
