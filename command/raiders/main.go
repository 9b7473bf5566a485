// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/raiders/blueprint"
	"github.com/bitmark-inc/raiders/configuration"
	"github.com/bitmark-inc/raiders/ledger"
	"github.com/bitmark-inc/raiders/registry"
	"github.com/bitmark-inc/raiders/validator"
)

type metadata struct {
	ctx       context.Context
	config    *configuration.Configuration
	ledger    ledger.Ledger
	store     registry.Store
	blueprint *blueprint.File
	resolver  *validator.Resolver
	log       *logger.L
	verbose   bool
	e         io.Writer
	w         io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp()
	app.Name = "raiders"
	app.Usage = "raid escrow contracts"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:  "config-file, c",
			Value: "raiders.conf",
			Usage: " configuration `FILE`",
		},
		cli.StringSliceFlag{
			Name:  "define, D",
			Usage: " Lua global for the configuration `NAME=VALUE`",
		},
	}
	app.Commands = commands

	app.Before = func(c *cli.Context) error {

		e := c.App.ErrWriter
		w := c.App.Writer
		verbose := c.GlobalBool("verbose")

		// to suppress reading config file if certain commands
		command := c.Args().Get(0)
		if "" == command || "version" == command || "help" == command || "h" == command {
			return nil
		}

		variables, err := defines(c.GlobalStringSlice("define"))
		if nil != err {
			return err
		}

		file := c.GlobalString("config-file")
		if verbose {
			fmt.Fprintf(e, "reading config file: %s\n", file)
		}
		theConfiguration, err := configuration.GetConfiguration(file, variables)
		if nil != err {
			return fmt.Errorf("failed to read configuration from: %q  error: %s", file, err)
		}

		if err = logger.Initialise(theConfiguration.Logging); nil != err {
			return fmt.Errorf("logger setup failed with error: %s", err)
		}

		log := logger.New("main")
		log.Infof("version: %s", version)
		log.Debugf("configuration: %+v", theConfiguration)

		l, err := newLedger(theConfiguration)
		if nil != err {
			log.Criticalf("ledger error: %s", err)
			return err
		}

		store, err := openRegistry(theConfiguration)
		if nil != err {
			log.Criticalf("registry error: %s", err)
			return err
		}

		artifacts := blueprint.NewFile(theConfiguration.Blueprint, logger.New("blueprint"))

		c.App.Metadata["config"] = &metadata{
			ctx:       ctx,
			config:    theConfiguration,
			ledger:    l,
			store:     store,
			blueprint: artifacts,
			resolver:  validator.NewResolver(artifacts, theConfiguration.Network, logger.New("resolver")),
			log:       log,
			verbose:   verbose,
			e:         e,
			w:         w,
		}
		return nil
	}

	app.After = func(c *cli.Context) error {
		m, ok := c.App.Metadata["config"].(*metadata)
		if !ok {
			return nil
		}
		err := m.store.Close()
		if nil != err {
			m.log.Errorf("registry close error: %s", err)
		}
		m.log.Info("finished")
		logger.Finalise()
		return err
	}

	err := app.Run(os.Args)
	if nil != err {
		exitwithstatus.Message("terminated with error: %s", err)
	}
}
