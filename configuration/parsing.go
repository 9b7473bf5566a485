// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/blockfrost"
	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/deploy"
	"github.com/bitmark-inc/raiders/digest"
	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// deployment registry drivers
const (
	DriverFile    = "file"
	DriverLevelDB = "leveldb"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "." // same directory as the configuration file

	defaultBlueprintFile  = "plutus.json"
	defaultSigningKeyFile = "admin.skey"

	defaultDeployedDirectory = "deployed"
	defaultLevelDBName       = "deployed.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "raiders.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	// seconds
	defaultConfirmationInterval    = 10
	defaultConfirmationMaxInterval = 120
	defaultConfirmationTimeout     = 1800
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// DeployedType - where deployment snapshots are kept
type DeployedType struct {
	Driver    string `gluamapper:"driver" json:"driver"`
	Directory string `gluamapper:"directory" json:"directory"`
}

// ParameterType - defaults for minting and for referencing a parameter
type ParameterType struct {
	ProjectAddress      string   `gluamapper:"project_address" json:"project_address"`
	AuthorizerAddresses []string `gluamapper:"authorizer_addresses" json:"authorizer_addresses"`
	FeePercentage       int64    `gluamapper:"fee_percentage" json:"fee_percentage"`
	TxHash              string   `gluamapper:"tx_hash" json:"tx_hash"`
	Index               uint32   `gluamapper:"index" json:"index"`
}

// ConfirmationType - deployment confirmation polling in seconds
type ConfirmationType struct {
	Interval    int `gluamapper:"interval" json:"interval"`
	MaxInterval int `gluamapper:"max_interval" json:"max_interval"`
	Timeout     int `gluamapper:"timeout" json:"timeout"`
}

// Configuration - everything the raiders program reads from its
// configuration file
type Configuration struct {
	DataDirectory  string `gluamapper:"data_directory" json:"data_directory"`
	Network        string `gluamapper:"network" json:"network"`
	Testing        bool   `gluamapper:"testing" json:"testing"`
	Blueprint      string `gluamapper:"blueprint" json:"blueprint"`
	AdminAddress   string `gluamapper:"admin_address" json:"admin_address"`
	SigningKeyFile string `gluamapper:"signing_key_file" json:"signing_key_file"`

	Blockfrost   blockfrost.Configuration `gluamapper:"blockfrost" json:"blockfrost"`
	Deployed     DeployedType             `gluamapper:"deployed" json:"deployed"`
	Parameter    ParameterType            `gluamapper:"parameter" json:"parameter"`
	Confirmation ConfirmationType         `gluamapper:"confirmation" json:"confirmation"`
	Logging      logger.Configuration     `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - will read decode and verify the configuration
func GetConfiguration(configurationFileName string, variables map[string]string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory:  defaultDataDirectory,
		Network:        chain.Preprod,
		Blueprint:      defaultBlueprintFile,
		SigningKeyFile: defaultSigningKeyFile,

		Deployed: DeployedType{
			Driver:    DriverFile,
			Directory: defaultDeployedDirectory,
		},

		Confirmation: ConfirmationType{
			Interval:    defaultConfirmationInterval,
			MaxInterval: defaultConfirmationMaxInterval,
			Timeout:     defaultConfirmationTimeout,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options, variables); err != nil {
		return nil, err
	}

	options.Network = strings.ToLower(options.Network)
	if !chain.Valid(options.Network) {
		return nil, fmt.Errorf("network: %q is not supported", options.Network)
	}

	switch options.Deployed.Driver {
	case DriverFile, DriverLevelDB:
	default:
		return nil, fault.ErrInvalidRegistryDriver
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fault.ErrInvalidDirectory
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = ensureAbsolute(dataDirectory, options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fault.ErrInvalidDirectory
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.Blueprint,
		&options.SigningKeyFile,
		&options.Deployed.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// the log file must be a plain name inside the log directory
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fault.ErrNotPlainFileName
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Deployed.Directory,
		&options.Logging.Directory,
	} {
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

// RegistryPath - file tree directory or leveldb database name
func (c *Configuration) RegistryPath() string {
	if DriverLevelDB == c.Deployed.Driver {
		return filepath.Join(c.Deployed.Directory, defaultLevelDBName)
	}
	return c.Deployed.Directory
}

// ParameterRef - the configured parameter output, if any
func (c *Configuration) ParameterRef() (ledger.OutRef, error) {
	if "" == c.Parameter.TxHash {
		return ledger.OutRef{}, fault.ErrParameterNotFound
	}
	h, err := digest.Hash32FromHex(c.Parameter.TxHash)
	if nil != err {
		return ledger.OutRef{}, err
	}
	return ledger.OutRef{TxId: h, Index: c.Parameter.Index}, nil
}

// DeployConfiguration - confirmation polling as durations
func (c *Configuration) DeployConfiguration() deploy.Configuration {
	return deploy.Configuration{
		Interval:    time.Duration(c.Confirmation.Interval) * time.Second,
		MaxInterval: time.Duration(c.Confirmation.MaxInterval) * time.Second,
		Timeout:     time.Duration(c.Confirmation.Timeout) * time.Second,
	}
}

// ensure the path is absolute
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
