// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

// Package dataset fetches leaked password lists: the Pwned Passwords SHA1
// ranges and Kaggle hosted dumps such as rockyou.txt.
package dataset

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alvinbaena/pwd-advisor/internal/util"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"github.com/thinhdanggroup/executor"
	"golang.org/x/net/context"
)

const (
	HIBPBaseURL = "https://api.pwnedpasswords.com"
	// AllRanges is every 5 hex character prefix, 00000 to FFFFF.
	AllRanges = 1 << 20
	// Approximate size of a full download.
	hibpSizeGb = 40
)

type HIBPDownloader struct {
	// BaseURL of the range API, without trailing slash.
	BaseURL string

	ctx         context.Context
	parallelism int
	progress    *progress
	wm          sync.Mutex
	writer      *bufio.Writer
	fileName    string
	http        *retryablehttp.Client
	failed      atomic.Uint64
	writeErr    error
}

// NewHIBPDownloader writes HASH:COUNT lines to out. A parallelism of zero or
// less uses eight workers per CPU.
func NewHIBPDownloader(out io.Writer, parallelism int) *HIBPDownloader {
	d := &HIBPDownloader{
		BaseURL:     HIBPBaseURL,
		parallelism: parallelism,
		writer:      bufio.NewWriter(out),
		http:        initHttpClient(),
	}
	if f, ok := out.(*os.File); ok {
		d.fileName = f.Name()
	}
	return d
}

func initHttpClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// Too much garbage in the logs
	client.Logger = nil
	// Retry Max 10 times on protocol errors. Any other are just reported and not retried.
	client.RetryMax = 10

	client.HTTPClient = &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       10 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			// HTTP/2 multiplexes a single connection, one connection per worker downloads faster.
			ForceAttemptHTTP2:   false,
			MaxIdleConnsPerHost: runtime.GOMAXPROCS(0) + 1,
		},
	}

	return client
}

// ProcessRanges downloads the first `ranges` prefixes. Unless skipWait is
// set it pauses 10 seconds so the user can cancel. Ranges that fail after
// retries are logged and reported in the returned error.
func (d *HIBPDownloader) ProcessRanges(ctx context.Context, ranges int, skipWait bool) error {
	if ranges <= 0 || ranges > AllRanges {
		return fmt.Errorf("ranges must be between 1 and %d", AllRanges)
	}

	if d.fileName != "" {
		if err := util.CheckDiskSpace(d.fileName, hibpSizeGb*float64(ranges)/AllRanges); err != nil {
			return err
		}
	}

	s := util.Stats()
	defer s()

	threads := d.parallelism
	if threads <= 0 {
		// ~150 Mbit/s sustained on 12 cores
		threads = runtime.NumCPU() * 8
	}

	downloadTasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * threads,
		NumWorkers:    threads,
	})
	if err != nil {
		return err
	}
	defer downloadTasks.Close()

	log.Info().Msgf("downloading Pwned Passwords SHA1 hashes with %d threads, ^C to stop the process", threads)
	if !skipWait {
		time.Sleep(10 * time.Second)
	}
	log.Info().Msg("starting process. This might take a while, be patient :)")

	d.ctx = ctx
	d.progress = newProgress("hibp", "hashes", uint64(ranges), 0)
	d.progress.Start()

	for i := 0; i < ranges; i++ {
		if ctx.Err() != nil {
			break
		}
		if err = downloadTasks.Publish(d.processRange, getHashRange(i)); err != nil {
			log.Panic().Err(err).Msgf("there is a programming error here.")
		}
	}

	downloadTasks.Wait()
	d.progress.Done()

	if d.writeErr != nil {
		return d.writeErr
	}
	if err = ctx.Err(); err != nil {
		return err
	}
	if failed := d.failed.Load(); failed > 0 {
		return fmt.Errorf("%d hash ranges could not be downloaded", failed)
	}

	if d.fileName != "" {
		if f, err := os.Stat(d.fileName); err == nil {
			log.Debug().Msgf("file %s is %.2fGiB", d.fileName, float64(f.Size())/(1024*1024*1024))
		}
	}
	return nil
}

// getHashRange is the 5 character hex prefix of i, the k-anonymity range.
func getHashRange(i int) string {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(i))
	return strings.ToUpper(hex.EncodeToString(buf)[3:])
}

func (d *HIBPDownloader) rangeRequest(ctx context.Context, prefix string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/range/%s", d.BaseURL, prefix),
		nil,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pwd-advisor-hibp-downloader/1.0")
	return req, nil
}

func (d *HIBPDownloader) processRange(prefix string) {
	data, err := d.downloadRange(d.ctx, prefix)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msgf("error downloading range %s", prefix)
		}
		d.failed.Add(1)
		return
	}

	if err = d.writeRange(prefix, data); err != nil {
		log.Error().Err(err).Msgf("error during file write for range %s", prefix)
		return
	}
	d.progress.Step()
}

func (d *HIBPDownloader) downloadRange(ctx context.Context, prefix string) ([]byte, error) {
	timer := time.Now()
	req, err := d.rangeRequest(ctx, prefix)
	if err != nil {
		return nil, err
	}

	res, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing body for range %s", prefix)
		}
	}(res.Body)

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("request for range [%s] failed with status %s", prefix, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	d.progress.Request(res, time.Since(timer))
	return body, nil
}

func (d *HIBPDownloader) writeRange(prefix string, r []byte) error {
	// one range at a time, no interleaved lines
	d.wm.Lock()
	defer d.wm.Unlock()

	if d.writeErr != nil {
		return d.writeErr
	}

	scanner := bufio.NewScanner(bytes.NewReader(r))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, err := d.writer.WriteString(prefix + line + "\r\n"); err != nil {
			d.writeErr = err
			return err
		}
		d.progress.Item()
	}

	if err := d.writer.Flush(); err != nil {
		d.writeErr = err
		return err
	}
	return nil
}
