package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/macropower/libexport/pkg/exporterrors"
	"github.com/macropower/libexport/pkg/keybench"
)

const keybenchDesc = `Benchmark PostgreSQL primary key types.

"insert" adds rows to the key type's table and appends the generated keys to
<data-dir>/<key type>.csv. "select" looks up a random sample of those keys.
Only time spent in the database is reported.

The connection is configured with POSTGRES_HOST, POSTGRES_PORT, POSTGRES_DB,
POSTGRES_USER, POSTGRES_PASSWORD and POSTGRES_SSLMODE unless --dsn is set.
The data directory defaults to DATA_DIR.
`

type keybenchArgs struct {
	dsn     string
	dataDir string
	rows    int
}

//nolint:revive // Matches the method expressions of [keybench.Bench].
type keybenchRun func(b *keybench.Bench, ctx context.Context, kt keybench.KeyType, rows int) (*keybench.Result, error)

// NewKeybenchCmd returns the keybench command.
func NewKeybenchCmd() *cobra.Command {
	args := &keybenchArgs{}
	cfg := keybench.ConfigFromEnv(nil)

	cmd := &cobra.Command{
		Use:   "keybench",
		Short: "Benchmark PostgreSQL primary key types",
		Long:  keybenchDesc,
	}

	cmd.PersistentFlags().IntVarP(&args.rows, "rows", "n", keybench.DefaultRowCount, "Number of rows to insert or select")
	cmd.PersistentFlags().StringVar(&args.dataDir, "data-dir", cfg.DataDir, "Directory holding the key files")
	must(cmd.MarkPersistentFlagDirname("data-dir"))
	cmd.PersistentFlags().StringVar(&args.dsn, "dsn", cfg.DSN(), "PostgreSQL connection string")

	cmd.AddCommand(newKeybenchActionCmd(args, "insert", "Insert rows keyed by KEY_TYPE", (*keybench.Bench).Insert))
	cmd.AddCommand(newKeybenchActionCmd(args, "select", "Select a random sample of inserted keys", (*keybench.Bench).Select))

	return cmd
}

func newKeybenchActionCmd(args *keybenchArgs, action, short string, run keybenchRun) *cobra.Command {
	return &cobra.Command{
		Use:          action + " KEY_TYPE",
		Short:        short,
		Long:         short + ".\n\nKEY_TYPE is one of: " + strings.Join(keybench.KeyTypeNames(), ", "),
		SilenceUsage: true,
		ValidArgs:    keybench.KeyTypeNames(),
		Args: func(cc *cobra.Command, posArgs []string) error {
			err := cobra.ExactArgs(1)(cc, posArgs)
			if err != nil {
				return fmt.Errorf("%w: %w", exporterrors.ErrInvalidArguments, err)
			}

			return nil
		},
		RunE: func(cc *cobra.Command, posArgs []string) error {
			kt, err := keybench.LookupKeyType(posArgs[0])
			if err != nil {
				return err
			}

			if args.rows <= 0 {
				return fmt.Errorf("%w: %d", keybench.ErrInvalidRowCount, args.rows)
			}

			store, err := keybench.OpenPostgres(args.dsn)
			if err != nil {
				return fmt.Errorf("%w: %w", exporterrors.ErrInvalidArguments, err)
			}
			defer store.Close()

			b := keybench.New(store,
				keybench.WithDataDir(args.dataDir),
				keybench.WithLogger(slog.Default()),
			)

			slog.Info("running key benchmark",
				slog.String("action", action),
				slog.String("key_type", kt.Name),
				slog.Int("rows", args.rows),
			)

			res, err := run(b, cc.Context(), kt, args.rows)
			if err != nil {
				return fmt.Errorf("%s %s keys: %w", action, kt.Name, err)
			}

			return writeKeybenchResult(cc.OutOrStdout(), res)
		},
	}
}

func writeKeybenchResult(w io.Writer, res *keybench.Result) error {
	_, err := fmt.Fprintf(w, "keys in data file = %d\nrows = %d\nTotal time = %s\n",
		res.Available, res.Rows, res.Elapsed)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
