// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/multirewards/api"
	"github.com/vechain/multirewards/eventdb"
	"github.com/vechain/multirewards/log"
	"github.com/vechain/multirewards/lvldb"
	"github.com/vechain/multirewards/metrics"
	"github.com/vechain/multirewards/rewarder"
	"github.com/vechain/multirewards/state"
	"github.com/vechain/multirewards/thor"
	"github.com/vechain/multirewards/token"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

var genesisAppliedKey = []byte("genesis-applied")

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "MultiRewards",
		Usage:     "Staking multi-token reward distribution service",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			dataDirFlag,
			genesisFlag,
			scenarioFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiEventsLimitFlag,
			verbosityFlag,
			jsonLogsFlag,
			persistFlag,
			onDemandMintFlag,
			enableAPILogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			pprofFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	gene, err := loadGenesis(ctx.String(genesisFlag.Name))
	if err != nil {
		return err
	}
	engineAddr, err := gene.engineAddress()
	if err != nil {
		return err
	}
	baseToken, err := gene.baseTokenAddress()
	if err != nil {
		return err
	}

	var (
		mainDB      *lvldb.LevelDB
		db          *eventdb.EventDB
		instanceDir string
	)
	if ctx.Bool(persistFlag.Name) {
		instanceDir = ctx.String(dataDirFlag.Name)
		if err := os.MkdirAll(instanceDir, 0700); err != nil {
			return err
		}
		if mainDB, err = lvldb.New(filepath.Join(instanceDir, "main.db"), lvldb.Options{}); err != nil {
			return err
		}
		if db, err = eventdb.New(filepath.Join(instanceDir, "events.db")); err != nil {
			return err
		}
	} else {
		instanceDir = "Memory"
		if mainDB, err = lvldb.NewMem(); err != nil {
			return err
		}
		if db, err = eventdb.NewMem(); err != nil {
			return err
		}
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()
	defer func() { log.Info("closing event database..."); db.Close() }()

	st := state.New(mainDB)
	bank := token.NewBank(engineAddr, st)
	rw := rewarder.New(engineAddr, st, bank, baseToken)

	if _, err := mainDB.Get(genesisAppliedKey); err != nil {
		if !mainDB.IsNotFound(err) {
			return err
		}
		if err := gene.apply(st, bank); err != nil {
			return err
		}
		if err := mainDB.Put(genesisAppliedKey, []byte{1}); err != nil {
			return err
		}
	}

	if path := ctx.String(scenarioFlag.Name); path != "" {
		sc, err := loadScenario(path)
		if err != nil {
			return err
		}
		if err := sc.replay(rw, st, bank, db); err != nil {
			return err
		}
	}

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	handler := api.New(rw, st, bank, db, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		EventsLimit:     ctx.Uint64(apiEventsLimitFlag.Name),
		AllowMint:       ctx.Bool(onDemandMintFlag.Name),
		PprofOn:         ctx.Bool(pprofFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})

	printStartupMessage(engineAddr, baseToken, instanceDir, ctx.String(apiAddrFlag.Name))

	return serve(ctx, handler, handleExitSignal())
}

// serve runs the API server, and the metrics server when enabled, until the
// exit signal fires.
func serve(ctx *cli.Context, handler http.HandlerFunc, done <-chan struct{}) error {
	var g errgroup.Group

	apiListener, err := net.Listen("tcp", ctx.String(apiAddrFlag.Name))
	if err != nil {
		return err
	}
	apiSrv := &http.Server{Handler: handler}
	g.Go(func() error {
		log.Info("API server started", "addr", apiListener.Addr())
		if err := apiSrv.Serve(apiListener); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	var metricsSrv *http.Server
	if ctx.Bool(enableMetricsFlag.Name) {
		metricsListener, err := net.Listen("tcp", ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		metricsSrv = &http.Server{Handler: metrics.HTTPHandler()}
		g.Go(func() error {
			log.Info("metrics server started", "addr", metricsListener.Addr())
			if err := metricsSrv.Serve(metricsListener); err != http.ErrServerClosed {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-done
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("stopping API server...")
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("API server shutdown", "err", err)
		}
		if metricsSrv != nil {
			log.Info("stopping metrics server...")
			if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
				log.Warn("metrics server shutdown", "err", err)
			}
		}
		return nil
	})

	return g.Wait()
}

func printStartupMessage(engine, baseToken thor.Address, instanceDir, apiAddr string) {
	fmt.Printf(`Starting %v
    Engine      [ %v ]
    Base token  [ %v ]
    Instance    [ %v ]
    API portal  [ http://%v/ ]
`,
		"MultiRewards "+fullVersion(),
		engine,
		baseToken,
		instanceDir,
		apiAddr,
	)
}
