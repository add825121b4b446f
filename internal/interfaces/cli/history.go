package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSource/internal/bootstrap"
	"github.com/turtacn/ChemSource/internal/infrastructure/storage/minio"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// NewHistoryCmd lists archived runs for a CAS number.
func NewHistoryCmd() *cobra.Command {
	var (
		cas   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived result sets for a CAS number",
		Long: "List result sets archived in object storage, newest first, with a\n" +
			"presigned download URL. Requires minio.enabled.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			mc := cliCtx.Config.MinIO
			if !mc.Enabled {
				return errors.New(errors.ErrCodeInvalidConfig, "result archive is not configured; set minio.enabled and minio.endpoint")
			}

			client, err := minio.NewMinIOClient(cmd.Context(), bootstrap.MinIOClientConfig(mc), cliCtx.Logger)
			if err != nil {
				return err
			}
			defer client.Close()

			runs, err := minio.NewResultArchive(client, cliCtx.Logger).List(cmd.Context(), cas, limit)
			if err != nil {
				return err
			}
			if cliCtx.OutputFormat == FormatTable && len(runs) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no archived runs for %s\n", cas)
				return nil
			}
			return writeResult(cmd.OutOrStdout(), cliCtx.OutputFormat, historyTable(runs))
		},
	}
	cmd.Flags().StringVar(&cas, "cas", "", "CAS registry number (required)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum runs to list")
	_ = cmd.MarkFlagRequired("cas")
	return cmd
}

type historyTable []minio.ArchivedResult

func (h historyTable) TableHeaders() []string {
	return []string{"Run", "Archived", "Size", "URL"}
}

func (h historyTable) TableRows() [][]string {
	rows := make([][]string, 0, len(h))
	for _, r := range h {
		rows = append(rows, []string{
			r.RunID,
			r.LastModified.UTC().Format(time.RFC3339),
			strconv.FormatInt(r.Size, 10),
			truncateString(r.URL, 60),
		})
	}
	return rows
}

//Personal.AI order the ending
