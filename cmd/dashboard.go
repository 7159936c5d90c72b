package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/salespulse/internal/dashboard"
	"github.com/KaramelBytes/salespulse/internal/obs"
	"github.com/KaramelBytes/salespulse/internal/sales"
	"github.com/spf13/cobra"
)

var (
	dashVariant string
	dashData    string
	dashAddr    string
	dashSheet   string
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve an interactive sales dashboard",
	Long: `Dashboard loads the dataset once and serves the selected variant:
"product" filters by product type, "region" adds a region selector and a
quantity scale. Every filter change reruns the whole page over the cached table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := effectiveConfig()
		name := c.Variant
		if dashVariant != "" {
			name = dashVariant
		}
		v, err := dashboard.LookupVariant(name)
		if err != nil {
			return err
		}
		path := dashData
		if path == "" {
			path = c.ProductData
			if v.Name == "region" {
				path = c.RegionData
			}
		}
		addr := c.Addr
		if dashAddr != "" {
			addr = dashAddr
		}

		tbl, err := sales.Load(path, sales.LoadOptions{Sheet: dashSheet})
		if err != nil {
			return err
		}
		obs.Logger.Info("dataset_loaded", "path", path, "rows", tbl.Len(), "skipped", tbl.Skipped, "variant", v.Name)
		for _, w := range tbl.Warnings {
			obs.Logger.Warn("dataset_warning", "detail", w)
		}
		srvDash, err := dashboard.New(tbl, v)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           srvDash.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			obs.Logger.Info("http_listen", "addr", addr, "variant", v.Name)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving %s on http://%s\n", v.Title, displayAddr(addr))

		select {
		case err := <-errc:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
			obs.Logger.Info("shutdown_signal")
		}

		ctxSrv, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctxSrv); err != nil {
			obs.Logger.Error("http_shutdown_error", "error", err)
			return err
		}
		obs.Logger.Info("service_stopped")
		return nil
	},
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVar(&dashVariant, "variant", "", "dashboard variant: product|region (overrides config)")
	dashboardCmd.Flags().StringVar(&dashData, "data", "", "dataset path (default from config per variant)")
	dashboardCmd.Flags().StringVar(&dashAddr, "addr", "", "listen address (overrides config)")
	dashboardCmd.Flags().StringVar(&dashSheet, "sheet", "", "XLSX: sheet name (default first sheet)")
}
