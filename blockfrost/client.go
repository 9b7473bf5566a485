// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockfrost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/chain"
	"github.com/bitmark-inc/raiders/fault"
)

// default endpoints per network
var endpoints = map[string]string{
	chain.Mainnet: "https://cardano-mainnet.blockfrost.io/api/v0",
	chain.Preprod: "https://cardano-preprod.blockfrost.io/api/v0",
	chain.Preview: "https://cardano-preview.blockfrost.io/api/v0",
}

const (
	pageSize = 100

	defaultRate         = 10
	defaultBurst        = 50
	defaultPollInterval = 5 * time.Second
	requestTimeout      = 30 * time.Second
)

// Configuration - connection settings
type Configuration struct {
	URL          string        `gluamapper:"url" json:"url"`
	ProjectId    string        `gluamapper:"project_id" json:"project_id"`
	Rate         float64       `gluamapper:"rate" json:"rate"`
	Burst        int           `gluamapper:"burst" json:"burst"`
	PollInterval time.Duration `gluamapper:"-" json:"-"`
}

// Client - ledger access through the Blockfrost REST API
type Client struct {
	network      string
	baseURL      string
	projectId    string
	limiter      *rate.Limiter
	httpClient   *http.Client
	pollInterval time.Duration
	log          *logger.L
}

// New - client for a network
//
// an empty URL selects the public endpoint for the network
func New(network string, configuration Configuration) (*Client, error) {
	if !chain.Valid(network) {
		return nil, fault.ErrInvalidChain
	}

	baseURL := configuration.URL
	if "" == baseURL {
		u, ok := endpoints[network]
		if !ok {
			return nil, fault.ErrInvalidChain
		}
		baseURL = u
	}

	limit := configuration.Rate
	if limit <= 0 {
		limit = defaultRate
	}
	burst := configuration.Burst
	if burst <= 0 {
		burst = defaultBurst
	}
	interval := configuration.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return &Client{
		network:   network,
		baseURL:   baseURL,
		projectId: configuration.ProjectId,
		limiter:   rate.NewLimiter(rate.Limit(limit), burst),
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		pollInterval: interval,
		log:          logger.New("blockfrost"),
	}, nil
}

// Network - the configured network name
func (c *Client) Network() string {
	return c.network
}

// error body returned by the API
type apiError struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// perform one rate limited request and decode a JSON reply
//
// a 404 reply is returned as notFound
func (c *Client) do(ctx context.Context, method string, path string, query url.Values, contentType string, body []byte, notFound error, reply interface{}) error {
	err := c.limiter.Wait(ctx)
	if nil != err {
		return err
	}

	u := c.baseURL + path
	if 0 != len(query) {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if nil != body {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, u, reader)
	if nil != err {
		return err
	}
	request.Header.Set("project_id", c.projectId)
	if "" != contentType {
		request.Header.Set("Content-Type", contentType)
	}

	c.log.Debugf("%s %s", method, path)
	response, err := c.httpClient.Do(request)
	if nil != err {
		c.log.Errorf("%s %s  error: %s", method, path, err)
		return fault.ProcessError(fmt.Sprintf("ledger request failed: %s", err))
	}
	defer response.Body.Close()

	buffer, err := io.ReadAll(response.Body)
	if nil != err {
		return fault.ProcessError(fmt.Sprintf("ledger response unreadable: %s", err))
	}

	if http.StatusNotFound == response.StatusCode {
		return notFound
	}
	if http.StatusOK != response.StatusCode {
		var e apiError
		if nil != json.Unmarshal(buffer, &e) || "" == e.Message {
			e.Message = http.StatusText(response.StatusCode)
		}
		c.log.Errorf("%s %s  status: %d  message: %s", method, path, response.StatusCode, e.Message)
		return fault.ProcessError(fmt.Sprintf("ledger request failed: %d: %s", response.StatusCode, e.Message))
	}

	if nil == reply {
		return nil
	}
	err = json.Unmarshal(buffer, reply)
	if nil != err {
		c.log.Errorf("%s %s  decode error: %s", method, path, err)
		return fault.ProcessError(fmt.Sprintf("ledger response invalid: %s", err))
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, notFound error, reply interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, "", nil, notFound, reply)
}

// fetch every page of a list endpoint
//
// each returns the number of items the page held
func (c *Client) pages(ctx context.Context, path string, notFound error, each func(buffer json.RawMessage) (int, error)) error {
	for page := 1; ; page += 1 {
		query := url.Values{
			"page":  []string{strconv.Itoa(page)},
			"count": []string{strconv.Itoa(pageSize)},
		}
		var buffer json.RawMessage
		err := c.get(ctx, path, query, notFound, &buffer)
		if nil != err {
			return err
		}
		n, err := each(buffer)
		if nil != err {
			return err
		}
		if n < pageSize {
			return nil
		}
	}
}
