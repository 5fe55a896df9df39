// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package cli

import "github.com/alvinbaena/pwd-advisor/internal/config"

var (
	// root
	cfg config.Config
	// root
	verbose bool
	// root
	profile bool
	// root
	pprofPort uint16
	// root
	envFiles []string
	// generate, check, serve
	corpusFile string
	// generate
	length int
	// generate
	count int
	// generate
	upper bool
	// generate
	lower bool
	// generate
	digits bool
	// generate
	specials bool
	// generate
	excludeAmbiguous bool
	// generate
	exclude string
	// generate
	encode bool
	// check
	interactive bool
	// check
	hashed bool
	// corpus build, corpus load
	inputFile string
	// corpus build, corpus load
	inputFormat string
	// corpus build, download hibp
	outFile string
	// corpus build
	probability uint64
	// corpus build
	indexGranularity uint64
	// corpus build, download
	overwrite bool
	// download hibp
	threads int
	// download hibp
	ranges int
	// download kaggle
	datasetName string
	// download kaggle
	datasetFile string
	// download kaggle
	datasetDir string
	// serve
	selfTLS bool
	// serve
	tlsCert string
	// serve
	tlsKey string
	// serve
	port uint16
)
