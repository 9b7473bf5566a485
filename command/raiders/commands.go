// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

var submitFlag = cli.BoolFlag{
	Name:  "submit, s",
	Usage: " sign with the configured key and submit (default is output unsigned JSON)",
}

var walletFlag = cli.StringFlag{
	Name:  "wallet, w",
	Value: "",
	Usage: "*address funding the transaction and receiving change `ADDRESS`",
}

var unitFlag = cli.StringFlag{
	Name:  "unit, u",
	Value: "",
	Usage: "*policy id and asset name in hex `UNIT`",
}

var parameterFlag = cli.StringFlag{
	Name:  "parameter, p",
	Value: "",
	Usage: " parameter output `TXHASH#INDEX` [default from configuration]",
}

// every command the program has, nothing is discovered at run time
var commands = []cli.Command{
	{
		Name:      "deploy",
		Usage:     "publish the raid programs as reference outputs and record them",
		ArgsUsage: "\n   (* = required)",
		Action:    runDeploy,
	},
	{
		Name:  "parameter",
		Usage: "manage the admin's parameter records",
		Subcommands: []cli.Command{
			{
				Name:      "mint",
				Usage:     "mint a parameter token holding the project fee and authorizers",
				ArgsUsage: "\n   (* = required)",
				Flags: []cli.Flag{
					cli.StringFlag{
						Name:  "project, P",
						Value: "",
						Usage: " project fee `ADDRESS` [default from configuration]",
					},
					cli.StringSliceFlag{
						Name:  "authorizer, a",
						Usage: " authorizer `ADDRESS`, may be repeated [default from configuration]",
					},
					cli.Int64Flag{
						Name:  "fee, f",
						Value: -1,
						Usage: " fee `PERCENTAGE` 0..100 [default from configuration]",
					},
					submitFlag,
				},
				Action: runParameterMint,
			},
			{
				Name:      "burn",
				Usage:     "spend a parameter record and burn its token",
				ArgsUsage: "\n   (* = required)",
				Flags: []cli.Flag{
					unitFlag,
					submitFlag,
				},
				Action: runParameterBurn,
			},
		},
	},
	{
		Name:  "raider",
		Usage: "build raid transactions",
		Subcommands: []cli.Command{
			{
				Name:      "create",
				Usage:     "open a raid, paying the project fee",
				ArgsUsage: "\n   (* = required)",
				Flags: []cli.Flag{
					walletFlag,
					cli.StringFlag{
						Name:  "creator, C",
						Value: "",
						Usage: " creator `ADDRESS` [default is the wallet]",
					},
					cli.Int64Flag{
						Name:  "quantity, q",
						Value: 1,
						Usage: " number of claims `COUNT`",
					},
					cli.Uint64Flag{
						Name:  "price, P",
						Value: 0,
						Usage: "*lovelace per claim `AMOUNT`",
					},
					parameterFlag,
				},
				Action: runRaiderCreate,
			},
			{
				Name:      "create-with-authorizer",
				Usage:     "open a raid without fee, approved by an authorizer",
				ArgsUsage: "\n   (* = required)",
				Flags: []cli.Flag{
					walletFlag,
					cli.StringFlag{
						Name:  "creator, C",
						Value: "",
						Usage: " creator `ADDRESS` [default is the wallet]",
					},
					cli.StringFlag{
						Name:  "authorizer, a",
						Value: "",
						Usage: "*authorizer `ADDRESS` listed in the parameter",
					},
					cli.Int64Flag{
						Name:  "quantity, q",
						Value: 1,
						Usage: " number of claims `COUNT`",
					},
					cli.Uint64Flag{
						Name:  "price, P",
						Value: 0,
						Usage: "*lovelace per claim `AMOUNT`",
					},
					parameterFlag,
				},
				Action: runRaiderCreateWithAuthorizer,
			},
			{
				Name:      "claim",
				Usage:     "release one claim of a raid's bounty",
				ArgsUsage: "\n   (* = required)",
				Flags: []cli.Flag{
					walletFlag,
					unitFlag,
					submitFlag,
				},
				Action: runRaiderClaim,
			},
			{
				Name:      "remove",
				Usage:     "close a raid and burn its token",
				ArgsUsage: "\n   (* = required)",
				Flags: []cli.Flag{
					walletFlag,
					unitFlag,
				},
				Action: runRaiderRemove,
			},
			{
				Name:   "list",
				Usage:  "list live raid tokens",
				Action: runRaiderList,
			},
		},
	},
	{
		Name:      "addresses",
		Usage:     "display the derived programs for the admin",
		ArgsUsage: "\n   (* = required)",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:  "watch, W",
				Usage: " re-derive whenever the blueprint file changes",
			},
		},
		Action: runAddresses,
	},
	{
		Name:  "version",
		Usage: "display raiders version",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "%s\n", version)
			return nil
		},
	},
}
