// Command market manages the marketplace records from the shell.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/and161185/marketstore/internal/config"
	"github.com/and161185/marketstore/internal/logging"
	"github.com/and161185/marketstore/internal/repository/flatfile"
	"github.com/and161185/marketstore/internal/service"
	"github.com/and161185/marketstore/internal/snapshot"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// errUsage marks invalid invocations; main exits with status 2 for them.
var errUsage = errors.New("usage")

const usageText = `market CLI
Usage:
  market [-config file] <cmd> [args]

Commands:
  version
  seller  add    -id <id> -name <n> [-surname s] [-nid n] [-address a] -password <p>
  seller  edit   -id <id> [-name n] [-surname s] [-nid n] [-address a] [-password p]
  seller  list
  seller  rm     -id <id>
  product add    -owner <sellerID> -name <n> [-id id] [-desc d] [-image path] [-price n] [-category C]
  product edit   -id <id> [-name n] [-desc d] [-image path] [-price n] [-category C] [-status S]
  product list   [-seller <id>]
  product rm     -id <id>
  product like   -id <id>
  product status -id <id> -status <ACTIVE|SOLD|REMOVED>
  request send   -from <sellerID> -to <sellerID>
  request list   [-sender <id> | -receiver <id>]
  request accept -id <id>
  request reject -id <id>
  request rm     -id <id>
  comment add    -product <id> -author <sellerID> -text <t>
  comment edit   -product <id> -id <commentID> -text <t>
  comment rm     -product <id> -id <commentID>
  top
  report   -out <file> -author <name> -from YYYY-MM-DD -to YYYY-MM-DD [-seller id]
  snapshot export [-format binary|xml|yaml]
  snapshot import  -format binary|xml|yaml
  login    -id <sellerID> -password <p>
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run parses global flags, wires the service and dispatches one command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("market", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "configs/marketplace.env", "key-value config file (empty: environment only)")
	fs.Usage = func() { fmt.Fprint(stderr, usageText) }
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	if fs.Arg(0) == "version" {
		fmt.Fprintf(stdout, "market %s (%s)\n", version, buildDate)
		return nil
	}

	svc, log, err := wire(*cfgPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a := &app{svc: svc, out: stdout, log: log}
	return a.dispatch(ctx, fs.Args())
}

// wire builds the service from configuration.
func wire(cfgPath string) (*service.MarketplaceServiceImpl, *zap.Logger, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Get(config.KeyLogPath, ""), cfg.Get(config.KeyLogLevel, "info"), logging.FileOnly())
	if err != nil {
		return nil, nil, err
	}

	var paths flatfile.Paths
	for key, dst := range map[string]*string{
		config.KeySellersText:  &paths.Sellers,
		config.KeyProductsText: &paths.Products,
		config.KeyRequestsText: &paths.Requests,
	} {
		if *dst, err = cfg.Require(key); err != nil {
			return nil, nil, err
		}
	}
	store, err := flatfile.NewStore(paths, log, nil)
	if err != nil {
		return nil, nil, err
	}
	exporter := snapshot.NewExporter(cfg, log, nil)
	return service.NewMarketplaceService(store, exporter, log, nil), log, nil
}

type app struct {
	svc service.MarketplaceService
	out io.Writer
	log *zap.Logger
}

func (a *app) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "seller":
		return a.seller(ctx, rest)
	case "product":
		return a.product(ctx, rest)
	case "request":
		return a.request(ctx, rest)
	case "comment":
		return a.comment(ctx, rest)
	case "top":
		return a.printJSON(toProducts(a.svc.Top10(ctx)))
	case "report":
		return a.report(ctx, rest)
	case "snapshot":
		return a.snapshot(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) ok(format string, args ...any) error {
	_, err := fmt.Fprintf(a.out, format+"\n", args...)
	return err
}

// verb splits "<verb> [flags]" and parses flags into fs.
func verb(group string, args []string) (string, []string, error) {
	if len(args) < 1 {
		return "", nil, fmt.Errorf("%w: %s needs a subcommand", errUsage, group)
	}
	return args[0], args[1:], nil
}

func parse(fs *flag.FlagSet, args []string, required ...string) error {
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	for _, name := range required {
		if f := fs.Lookup(name); f == nil || f.Value.String() == "" {
			return fmt.Errorf("%w: %s needs -%s", errUsage, fs.Name(), name)
		}
	}
	return nil
}
