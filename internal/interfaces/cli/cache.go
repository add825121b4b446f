package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/ChemSource/internal/application/discovery"
	"github.com/turtacn/ChemSource/internal/bootstrap"
	"github.com/turtacn/ChemSource/internal/domain/supplier"
	"github.com/turtacn/ChemSource/internal/infrastructure/database/redis"
	"github.com/turtacn/ChemSource/pkg/errors"
)

// NewCacheCmd groups evidence cache maintenance.
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Maintain the evidence cache",
	}
	cmd.AddCommand(newCachePurgeCmd())
	return cmd
}

func newCachePurgeCmd() *cobra.Command {
	var cas string

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Forget cached page evidence for a CAS number",
		Long: "Delete every cached extraction outcome for a CAS number so the next\n" +
			"search refetches its candidate pages. Requires redis.enabled.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			rc := cliCtx.Config.Redis
			if !rc.Enabled {
				return errors.New(errors.ErrCodeInvalidConfig, "evidence cache is not configured; set redis.enabled and redis.addr")
			}
			if err := supplier.ValidateCAS(cas); err != nil {
				return err
			}

			client, err := redis.NewClient(bootstrap.RedisClientConfig(rc), cliCtx.Logger)
			if err != nil {
				return err
			}
			defer client.Close()

			cache := redis.NewRedisCache(client, cliCtx.Logger, redis.WithPrefix(rc.Prefix))
			n, err := cache.DeleteByPrefix(cmd.Context(), discovery.EvidencePrefix(cas))
			if err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("removed %d cached pages for %s", n, cas))
			return nil
		},
	}
	cmd.Flags().StringVar(&cas, "cas", "", "CAS registry number (required)")
	_ = cmd.MarkFlagRequired("cas")
	return cmd
}

//Personal.AI order the ending
