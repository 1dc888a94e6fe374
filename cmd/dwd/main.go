// dwd is an always-on personal wallet daemon: it owns one account at a
// time, keeps its cached view of the chain current via a background
// synchronisation engine, and exposes the account's operations over
// whatever request channel cmd/dwd is extended to speak.
package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/duskwallet/dwd/wallet"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	daemonCfg, err := loadDaemonFlags()
	if err != nil {
		return err
	}

	if _, err := initLogging(daemonCfg); err != nil {
		return err
	}

	walletCfg, err := wallet.LoadConfig(daemonCfg.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	accountsDir := filepath.Join(daemonCfg.HomeDir, "accounts")
	w, err := wallet.New(accountsDir, walletCfg)
	if err != nil {
		return fmt.Errorf("failed to open account store: %v", err)
	}
	defer w.Stop()

	metricsServer := startMetricsServer(w, daemonCfg.MetricsListen)
	defer metricsServer.Close()

	log.Infof("dwd started, homedir=%s", daemonCfg.HomeDir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	<-sigCh
	log.Infof("caught interrupt, shutting down")

	return nil
}

// startMetricsServer serves the active account's control-loop metrics on
// addr, refreshed each request since the active account (and its engine)
// can change out from under the daemon via set_account/delete_account.
func startMetricsServer(w *wallet.Wallet, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		m := w.Metrics()
		if m == nil {
			http.Error(rw, "no active account", http.StatusServiceUnavailable)
			return
		}
		promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}).ServeHTTP(rw, r)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}
