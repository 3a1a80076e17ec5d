// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakeledger/api"
	"github.com/vechain/stakeledger/kv"
	"github.com/vechain/stakeledger/log"
	"github.com/vechain/stakeledger/logdb"
	"github.com/vechain/stakeledger/metrics"
	"github.com/vechain/stakeledger/node"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

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
		Name:      "StakeLedger",
		Usage:     "Staking ledger with fixed-rate rewards",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			cacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiBacktraceLimitFlag,
			apiLogsLimitFlag,
			enableAPILogsFlag,
			apiSlowQueriesThresholdFlag,
			apiLog5xxErrorsFlag,
			verbosityFlag,
			jsonLogsFlag,
			pprofFlag,
			skipLogsFlag,
			skipNTPFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
			soloFlag,
			persistFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	initLogger(ctx)
	gene := selectGenesis(ctx)
	solo := ctx.Bool(soloFlag.Name)

	var (
		mainDB      kv.StoreCloser
		logDB       *logdb.LogDB
		instanceDir string
	)
	if solo && !ctx.Bool(persistFlag.Name) {
		instanceDir = "Memory"
		mainDB = openMemMainDB()
		logDB = openMemLogDB()
	} else {
		instanceDir = makeInstanceDir(ctx, gene)
		mainDB = openMainDB(ctx, instanceDir)
		logDB = openLogDB(instanceDir)
	}
	defer func() { logger.Info("closing main database..."); mainDB.Close() }()
	defer func() { logger.Info("closing log database..."); logDB.Close() }()

	n, err := node.New(mainDB, logDB, gene, clockwork.NewRealClock(), node.Options{
		StateCacheSize: stateCacheEntries(ctx),
		SkipNTP:        ctx.Bool(skipNTPFlag.Name),
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(handleExitSignal())
	var stops []func()

	enableMetrics := ctx.Bool(enableMetricsFlag.Name)
	var metricsURL string
	if enableMetrics {
		metrics.InitializePrometheusMetrics()
		url, stop := startMetricsServer(ctx, g)
		metricsURL = url
		stops = append(stops, stop)
	}

	apiLogsToggle := &atomic.Bool{}
	apiLogsToggle.Store(ctx.Bool(enableAPILogsFlag.Name))

	var adminURL string
	if ctx.Bool(enableAdminFlag.Name) {
		url, stop, err := api.StartAdminServer(ctx.String(adminAddrFlag.Name), log.RootLevel, n.Health(), apiLogsToggle)
		if err != nil {
			return err
		}
		adminURL = url
		stops = append(stops, stop)
	}

	handler, closeAPI := api.New(n, logDB, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		BacktraceLimit:       uint32(ctx.Uint64(apiBacktraceLimitFlag.Name)),
		LogsLimit:            ctx.Uint64(apiLogsLimitFlag.Name),
		PprofOn:              ctx.Bool(pprofFlag.Name),
		SkipLogs:             ctx.Bool(skipLogsFlag.Name),
		EnableMetrics:        enableMetrics,
		EnableReqLogger:      apiLogsToggle,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		SoloMode:             solo,
	})
	apiURL, stopAPI := startAPIServer(ctx, g, handler)
	stops = append(stops, stopAPI)

	printStartupMessage(startupInfo{
		gene:        gene,
		instanceDir: instanceDir,
		apiURL:      apiURL,
		metricsURL:  metricsURL,
		adminURL:    adminURL,
		solo:        solo,
	})

	g.Go(func() error {
		err := n.Run(gctx)
		logger.Info("stopping servers...")
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
		closeAPI()
		return err
	})
	return g.Wait()
}
