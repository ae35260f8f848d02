// Package command executes the esq commands against a configured client.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/theory/jsonpath"

	"github.com/jacoelho/esq/client"
	"github.com/jacoelho/esq/flat"
	"github.com/jacoelho/esq/hosts"
	"github.com/jacoelho/esq/internal/config"
	"github.com/jacoelho/esq/internal/exit"
	"github.com/jacoelho/esq/query"
)

type Runner struct {
	config   *config.Config
	client   *client.Client
	pool     *hosts.Pool
	selector *jsonpath.Path
	logger   *slog.Logger
	output   io.Writer
}

// New builds the client described by cfg. When a hosts file is configured
// the returned runner keeps it watched for the duration of Run.
func New(cfg *config.Config) (*Runner, *exit.Result) {
	logger := cfg.Logger(os.Stderr)

	httpClient, err := cfg.HTTPClient()
	if err != nil {
		return nil, exit.Errorf("Error creating client: %v\n", err)
	}

	r := &Runner{config: cfg, logger: logger, output: os.Stdout}

	provider, err := r.hostProvider()
	if err != nil {
		return nil, exit.Errorf("Error: %v\n", err)
	}

	if cfg.Select != "" {
		r.selector, err = jsonpath.Parse(cfg.Select)
		if err != nil {
			return nil, exit.Usagef("Error: invalid select expression %s: %v\n", cfg.Select, err)
		}
	}

	var flatOptions []flat.Option
	if cfg.Times {
		flatOptions = append(flatOptions, flat.WithTimes())
	}

	r.client, err = client.New(client.Options{
		Hosts:       provider,
		HTTPClient:  httpClient,
		Logger:      logger,
		RateLimit:   cfg.RateLimit,
		FlatOptions: flatOptions,
		DumpBodies:  cfg.Debug,
	})
	if err != nil {
		return nil, exit.Errorf("Error creating client: %v\n", err)
	}

	return r, nil
}

func (r *Runner) hostProvider() (hosts.Provider, error) {
	if r.config.HostsFile != "" {
		urls, err := hosts.LoadFile(r.config.HostsFile)
		if err != nil {
			return nil, err
		}
		r.pool = hosts.NewPool(urls...)
		return r.pool, nil
	}

	urls, err := hosts.Parse(r.config.Hosts...)
	if err != nil {
		return nil, err
	}
	return hosts.New(urls...)
}

func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

// Run executes the configured command.
func (r *Runner) Run(ctx context.Context) *exit.Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.pool != nil {
		go r.watchHosts(ctx)
	}

	var err error
	args := r.config.Args
	switch r.config.Command {
	case "search":
		err = r.search(ctx, args)
	case "get":
		err = r.get(ctx, args[0], args[1], args[2])
	case "exists":
		err = r.exists(ctx, args[0])
	case "create-index":
		err = r.createIndex(ctx, args)
	case "delete-index":
		err = r.acknowledge(r.client.DeleteIndex(ctx, args[0]))
	case "open-index":
		err = r.acknowledge(r.client.OpenIndex(ctx, args[0]))
	case "close-index":
		err = r.acknowledge(r.client.CloseIndex(ctx, args[0]))
	case "bulk":
		err = r.bulk(ctx, args[0], args[1])
	default:
		return exit.Usagef("Error: %v: %s\n\n%s", config.ErrUnknownCommand, r.config.Command, config.Usage())
	}

	return result(err)
}

func (r *Runner) watchHosts(ctx context.Context) {
	err := hosts.WatchFile(ctx, r.config.HostsFile, r.pool, r.logger)
	if err != nil && ctx.Err() == nil {
		r.logger.Warn("hosts file watch stopped", slog.String("path", r.config.HostsFile), slog.String("err", err.Error()))
	}
}

var errNotFound = errors.New("not found")

func result(err error) *exit.Result {
	if err == nil {
		return exit.Success("")
	}

	var httpErr *client.HTTPError
	if errors.Is(err, errNotFound) || (errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound) {
		return exit.NotFound(fmt.Sprintf("Error: %v\n", err))
	}
	return exit.Errorf("Error: %v\n", err)
}

func (r *Runner) search(ctx context.Context, args []string) error {
	var body any = query.Search().Query(query.MatchAll())
	if len(args) > 1 {
		m, err := loadMap(args[1])
		if err != nil {
			return err
		}
		body = m
	}

	res, err := r.client.Search(ctx, args[0], body, nil)
	if err != nil {
		return err
	}
	return r.printSearch(res)
}

func (r *Runner) get(ctx context.Context, index, docType, id string) error {
	res, err := r.client.Get(ctx, index, docType, id, nil)
	if err != nil {
		return err
	}
	if !res.Found {
		return fmt.Errorf("document %s/%s: %w", index, id, errNotFound)
	}
	return r.printDocument(res.ID, nil, res.Source)
}

func (r *Runner) exists(ctx context.Context, index string) error {
	ok, err := r.client.IndexExists(ctx, index)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("index %s: %w", index, errNotFound)
	}
	_, err = fmt.Fprintf(r.output, "%s exists\n", index)
	return err
}

func (r *Runner) createIndex(ctx context.Context, args []string) error {
	var settings any
	if len(args) > 1 {
		m, err := loadMap(args[1])
		if err != nil {
			return err
		}
		settings = m
	}
	return r.acknowledge(r.client.CreateIndex(ctx, args[0], settings))
}

func (r *Runner) acknowledge(res *client.AcknowledgeResult, err error) error {
	if err != nil {
		return err
	}
	if !res.Acknowledged {
		return errors.New("request was not acknowledged")
	}
	_, err = fmt.Fprintln(r.output, "acknowledged")
	return err
}

func (r *Runner) bulk(ctx context.Context, index, path string) error {
	docs, err := readDocuments(path)
	if err != nil {
		return err
	}

	res, err := r.client.BulkDocuments(ctx, index, "", client.BulkIndex, docs, nil)
	if err != nil {
		return err
	}
	return r.printBulk(res)
}
