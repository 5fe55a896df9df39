// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package dataset

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/context"
)

const (
	KaggleBaseURL  = "https://www.kaggle.com/api/v1"
	DefaultDataset = "wjburns/common-password-list-rockyoutxt"
	DefaultFile    = "rockyou.txt"
)

var ErrMissingCredentials = errors.New("kaggle username and key are required")

// Kaggle fetches a single file out of a Kaggle dataset archive.
type Kaggle struct {
	BaseURL  string
	Username string
	Key      string
	// Dir where extracted files are kept.
	Dir string

	http *retryablehttp.Client
}

func NewKaggle(username, key, dir string) *Kaggle {
	if dir == "" {
		dir = defaultCacheDir()
	}

	client := retryablehttp.NewClient()
	client.Logger = nil
	client.RetryMax = 3

	return &Kaggle{
		BaseURL:  KaggleBaseURL,
		Username: username,
		Key:      key,
		Dir:      dir,
		http:     client,
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "pwd-advisor")
	}
	return filepath.Join(os.TempDir(), "pwd-advisor")
}

// Fetch returns the local path of file from dataset ("owner/slug"),
// downloading and extracting the archive unless the file is already there
// or overwrite is set.
func (k *Kaggle) Fetch(ctx context.Context, dataset, file string, overwrite bool) (string, error) {
	if dataset == "" {
		dataset = DefaultDataset
	}
	if file == "" {
		file = DefaultFile
	}

	target := filepath.Join(k.Dir, strings.ReplaceAll(dataset, "/", "_"), filepath.Base(file))
	if _, err := os.Stat(target); err == nil && !overwrite {
		log.Info().Msgf("using cached dataset file %s", target)
		return target, nil
	}

	if k.Username == "" || k.Key == "" {
		return "", ErrMissingCredentials
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}

	archive, err := os.CreateTemp(filepath.Dir(target), "download-*.zip")
	if err != nil {
		return "", err
	}
	defer func() {
		_ = archive.Close()
		_ = os.Remove(archive.Name())
	}()

	log.Info().Msgf("downloading Kaggle dataset %s", dataset)
	size, err := k.download(ctx, dataset, archive)
	if err != nil {
		return "", err
	}
	log.Debug().Msgf("downloaded %.2f MiB", float64(size)/(1024*1024))

	if err = extract(archive, size, file, target); err != nil {
		return "", err
	}

	log.Info().Msgf("dataset file extracted to %s", target)
	return target, nil
}

func (k *Kaggle) download(ctx context.Context, dataset string, out io.Writer) (int64, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/datasets/download/%s", k.BaseURL, dataset), nil)
	if err != nil {
		return 0, err
	}
	req.SetBasicAuth(k.Username, k.Key)
	req.Header.Set("User-Agent", "pwd-advisor/1.0")

	res, err := k.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("kaggle download of %s failed with status %s", dataset, res.Status)
	}

	var total uint64
	if res.ContentLength > 0 {
		total = uint64(res.ContentLength)
	}
	prog := newProgress("kaggle "+dataset, "bytes", 0, total)
	prog.Start()
	defer prog.Done()

	n, err := io.Copy(out, io.TeeReader(res.Body, prog))
	prog.Step()
	return n, err
}

// extract copies the archive member whose base name is file into target.
func extract(archive io.ReaderAt, size int64, file, target string) error {
	zr, err := zip.NewReader(archive, size)
	if err != nil {
		return fmt.Errorf("dataset archive is not a zip file: %w", err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || path.Base(f.Name) != file {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return err
		}
		defer rc.Close()

		tmp := target + ".part"
		out, err := os.Create(tmp)
		if err != nil {
			return err
		}
		if _, err = io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = os.Remove(tmp)
			return err
		}
		if err = out.Close(); err != nil {
			return err
		}
		return os.Rename(tmp, target)
	}

	return fmt.Errorf("file %s not found in dataset archive", file)
}
