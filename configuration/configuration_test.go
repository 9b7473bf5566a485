// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/raiders/configuration"
	"github.com/bitmark-inc/raiders/fault"
)

const fullConfiguration = `
local project_id = os.getenv("RAIDERS_TEST_PROJECT_ID")

return {
    network = "Preview",
    testing = true,
    blueprint = "contracts/plutus.json",
    admin_address = "addr_test1vzadmin",
    signing_key_file = "/secure/admin.skey",

    blockfrost = {
        url = "http://127.0.0.1:3000",
        project_id = project_id,
        rate = 5,
        burst = 20,
    },

    deployed = {
        driver = "leveldb",
        directory = "state",
    },

    parameter = {
        project_address = "addr_test1vzproject",
        authorizer_addresses = { "addr_test1vzone", "addr_test1vztwo" },
        fee_percentage = 5,
        tx_hash = "0101010101010101010101010101010101010101010101010101010101010101",
        index = 3,
    },

    confirmation = {
        interval = 2,
        max_interval = 30,
        timeout = 600,
    },

    logging = {
        directory = "logs",
        file = "test.log",
        size = 2048,
        count = 3,
        levels = {
            main = "debug",
            deploy = "warn",
        },
    },
}
`

func write(t *testing.T, content string) string {
	dir, err := os.MkdirTemp("", "raiders-configuration")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	fileName := filepath.Join(dir, "raiders.conf")
	err = os.WriteFile(fileName, []byte(content), 0600)
	if nil != err {
		t.Fatalf("write error: %s", err)
	}
	return fileName
}

func TestGetConfiguration(t *testing.T) {
	os.Setenv("RAIDERS_TEST_PROJECT_ID", "preview-secret")
	defer os.Unsetenv("RAIDERS_TEST_PROJECT_ID")

	fileName := write(t, fullConfiguration)
	dir := filepath.Dir(fileName)

	c, err := configuration.GetConfiguration(fileName, nil)
	assert.Nil(t, err)

	assert.Equal(t, "preview", c.Network)
	assert.True(t, c.Testing)
	assert.Equal(t, filepath.Join(dir, "contracts", "plutus.json"), c.Blueprint)
	assert.Equal(t, "/secure/admin.skey", c.SigningKeyFile)
	assert.Equal(t, "addr_test1vzadmin", c.AdminAddress)

	assert.Equal(t, "http://127.0.0.1:3000", c.Blockfrost.URL)
	assert.Equal(t, "preview-secret", c.Blockfrost.ProjectId)
	assert.Equal(t, float64(5), c.Blockfrost.Rate)
	assert.Equal(t, 20, c.Blockfrost.Burst)

	assert.Equal(t, configuration.DriverLevelDB, c.Deployed.Driver)
	assert.Equal(t, filepath.Join(dir, "state"), c.Deployed.Directory)
	assert.Equal(t, filepath.Join(dir, "state", "deployed.leveldb"), c.RegistryPath())

	assert.Equal(t, "addr_test1vzproject", c.Parameter.ProjectAddress)
	assert.Equal(t, []string{"addr_test1vzone", "addr_test1vztwo"}, c.Parameter.AuthorizerAddresses)
	assert.Equal(t, int64(5), c.Parameter.FeePercentage)

	ref, err := c.ParameterRef()
	assert.Nil(t, err)
	assert.Equal(t, uint32(3), ref.Index)
	assert.Equal(t, byte(1), ref.TxId[0])

	d := c.DeployConfiguration()
	assert.Equal(t, 2*time.Second, d.Interval)
	assert.Equal(t, 30*time.Second, d.MaxInterval)
	assert.Equal(t, 10*time.Minute, d.Timeout)

	assert.Equal(t, filepath.Join(dir, "logs"), c.Logging.Directory)
	assert.Equal(t, "test.log", c.Logging.File)
	assert.Equal(t, 3, c.Logging.Count)
	assert.Equal(t, "debug", c.Logging.Levels["main"])

	for _, d := range []string{c.Deployed.Directory, c.Logging.Directory} {
		info, err := os.Stat(d)
		assert.Nil(t, err, "directory created: %s", d)
		assert.True(t, info.IsDir())
	}
}

func TestDefaults(t *testing.T) {
	fileName := write(t, "return {}\n")
	dir := filepath.Dir(fileName)

	c, err := configuration.GetConfiguration(fileName, nil)
	assert.Nil(t, err)

	assert.Equal(t, "preprod", c.Network)
	assert.False(t, c.Testing)
	assert.Equal(t, filepath.Join(dir, "plutus.json"), c.Blueprint)
	assert.Equal(t, filepath.Join(dir, "admin.skey"), c.SigningKeyFile)
	assert.Equal(t, configuration.DriverFile, c.Deployed.Driver)
	assert.Equal(t, filepath.Join(dir, "deployed"), c.RegistryPath())
	assert.Equal(t, 30*time.Minute, c.DeployConfiguration().Timeout)

	_, err = c.ParameterRef()
	assert.Equal(t, fault.ErrParameterNotFound, err)
}

func TestVariables(t *testing.T) {
	fileName := write(t, `return { network = chosen }`)

	c, err := configuration.GetConfiguration(fileName, map[string]string{"chosen": "mainnet"})
	assert.Nil(t, err)
	assert.Equal(t, "mainnet", c.Network)
}

func TestInvalidConfiguration(t *testing.T) {
	tests := []struct {
		content string
		check   func(error) bool
	}{
		{`return { network = "moon" }`, func(err error) bool { return nil != err }},
		{`return { deployed = { driver = "redis" } }`, func(err error) bool { return fault.ErrInvalidRegistryDriver == err }},
		{`return { data_directory = "" }`, func(err error) bool { return fault.ErrInvalidDirectory == err }},
		{`return { data_directory = "missing" }`, func(err error) bool { return os.IsNotExist(err) }},
		{`return { logging = { file = "sub/raiders.log" } }`, func(err error) bool { return fault.ErrNotPlainFileName == err }},
		{`return "text"`, func(err error) bool { return fault.ErrConfigurationNotTable == err }},
		{`return {`, func(err error) bool { return nil != err }},
	}

	for i, item := range tests {
		_, err := configuration.GetConfiguration(write(t, item.content), nil)
		assert.True(t, item.check(err), "%d: unexpected error: %v", i, err)
	}
}
