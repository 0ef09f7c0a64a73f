package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli"

	"ansdns/internal/platform/config"
	"ansdns/internal/platform/logger"
	"ansdns/internal/records/adapters/exm"
	"ansdns/internal/records/adapters/molecule"
	"ansdns/internal/records/auth"
	"ansdns/internal/records/models"
	"ansdns/internal/records/ownership"
	"ansdns/internal/records/service"
	"ansdns/internal/records/store"
)

const defaultLookupTimeout = 10 * time.Second

// withExecutor opens the state file, builds the full action pipeline on top
// of it and closes the file when fn returns.
func withExecutor(c *cli.Context, fn func(context.Context, *service.Executor) error) error {
	s, err := store.OpenBolt(c.GlobalString("db"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer s.Close()

	timeout := c.GlobalDuration("timeout")
	authenticator, err := auth.New(auth.NewPSSVerifier(), molecule.New(molecule.WithTimeout(timeout)))
	if err != nil {
		return err
	}
	owners, err := ownership.New(exm.New(exm.WithBaseURL(c.GlobalString("exm-url")), exm.WithTimeout(timeout)))
	if err != nil {
		return err
	}
	contract, err := service.NewContract(authenticator, owners)
	if err != nil {
		return err
	}
	exec, err := service.NewExecutor(contract, s, service.WithLogger(cliLogger(c.App.ErrWriter)))
	if err != nil {
		return err
	}
	return fn(context.Background(), exec)
}

func cliLogger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return logger.NewWithWriter(w, "text", "production")
}

func initState(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected a genesis file", 2)
	}
	g, err := config.LoadGenesis(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	genesis, err := g.State()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return withExecutor(c, func(ctx context.Context, exec *service.Executor) error {
		created, err := exec.Bootstrap(ctx, genesis)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if !created {
			return cli.NewExitError("state already initialized", 1)
		}
		fmt.Fprintln(c.App.Writer, "state initialized")
		return nil
	})
}

func execAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected an action file", 2)
	}
	data, err := readInput(c.Args().First())
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	var in models.Input
	if err := json.Unmarshal(data, &in); err != nil {
		return cli.NewExitError(fmt.Errorf("decode action: %w", err), 1)
	}
	return withExecutor(c, func(ctx context.Context, exec *service.Executor) error {
		result, err := exec.Execute(ctx, models.Action{Input: in, TransactionID: c.String("tx")})
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		if result.State != nil {
			return printJSON(c.App.Writer, changesSummary(result))
		}
		return printJSON(c.App.Writer, result)
	})
}

func getRecords(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected a domain", 2)
	}
	return withExecutor(c, func(ctx context.Context, exec *service.Executor) error {
		result, err := exec.Execute(ctx, models.Action{Input: models.Input{
			Function: models.FunctionGetDomainRecords,
			Domain:   c.Args().First(),
		}})
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		return printJSON(c.App.Writer, result)
	})
}

func migrateState(c *cli.Context) error {
	return withExecutor(c, func(ctx context.Context, exec *service.Executor) error {
		if _, err := exec.Bootstrap(ctx, nil); err != nil {
			return cli.NewExitError(err, 1)
		}
		if _, err := exec.State(ctx); err != nil {
			return cli.NewExitError(err, 1)
		}
		fmt.Fprintln(c.App.Writer, "state migrated")
		return nil
	})
}

func dumpState(c *cli.Context) error {
	return withExecutor(c, func(ctx context.Context, exec *service.Executor) error {
		state, err := exec.State(ctx)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		return printJSON(c.App.Writer, state)
	})
}

type summary struct {
	Caller  string          `json:"caller"`
	Changes []models.Change `json:"changes"`
}

func changesSummary(r *models.Result) summary {
	return summary{Caller: r.Caller, Changes: r.Changes}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, errors.New("empty action file")
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
