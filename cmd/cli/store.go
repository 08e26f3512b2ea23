package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/prismstudio/certverify/internal/app"
	"github.com/prismstudio/certverify/internal/infrastructure/persistence/database"
	"github.com/prismstudio/certverify/pkg/constants"
)

func zapStderr(cmd *cobra.Command) zapcore.WriteSyncer {
	return zapcore.AddSync(cmd.ErrOrStderr())
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the certificate, rate limit and verification log tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.Database.AutoMigrate = false

			conn, err := database.NewDBConnection(cmd.Context(), &cfg.Database, log)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.AutoMigrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s database\n", cfg.Database.Driver)
			return nil
		},
	}
}

func newRateLimitCommand() *cobra.Command {
	rateLimitCmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit records",
	}

	var ip, endpoint string
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the rate limit record of a client address",
		RunE: func(cmd *cobra.Command, args []string) error {
			if net.ParseIP(ip) == nil {
				return fmt.Errorf("--ip %q is not an IP address", ip)
			}

			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if constants.RateLimitBackend(cfg.RateLimit.Backend) == constants.RateLimitBackendMemory {
				return fmt.Errorf("the memory rate limit backend is local to the server process")
			}

			c, err := app.NewStorage(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer c.Close(cmd.Context())

			if err := c.Limiter.Reset(cmd.Context(), ip, endpoint); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reset %s on %s\n", ip, endpoint)
			return nil
		},
	}
	resetCmd.Flags().StringVar(&ip, "ip", "", "client address to clear")
	resetCmd.Flags().StringVar(&endpoint, "endpoint", constants.EndpointCertificateVerify, "endpoint the record belongs to")
	_ = resetCmd.MarkFlagRequired("ip")

	rateLimitCmd.AddCommand(resetCmd)
	return rateLimitCmd
}

//Personal.AI order the ending
