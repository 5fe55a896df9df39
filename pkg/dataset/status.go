package dataset

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const progressInterval = 10 * time.Second

// progress logs how far a download is. Steps are units of work (hash ranges,
// archives), items are what they carry (hashes, bytes). The percentage uses
// steps when their total is known, items otherwise.
type progress struct {
	name       string
	itemName   string
	totalSteps uint64
	totalItems uint64

	steps         atomic.Uint64
	items         atomic.Uint64
	requests      atomic.Uint64
	cacheHits     atomic.Uint64
	requestMillis atomic.Uint64

	start time.Time
	stop  chan struct{}
	once  sync.Once
}

func newProgress(name, itemName string, totalSteps, totalItems uint64) *progress {
	return &progress{
		name:       name,
		itemName:   itemName,
		totalSteps: totalSteps,
		totalItems: totalItems,
		start:      time.Now(),
		stop:       make(chan struct{}),
	}
}

func (p *progress) Start() {
	go func() {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-p.stop:
				return
			case <-ticker.C:
				p.logProgress()
			}
		}
	}()
}

func (p *progress) logProgress() {
	rate := p.itemsPerSecond()
	switch {
	case p.totalSteps > 0:
		log.Info().Msgf("%s: %.2f%% done. %.0f %s/s", p.name,
			float64(p.steps.Load())*100/float64(p.totalSteps), rate, p.itemName)
	case p.totalItems > 0:
		log.Info().Msgf("%s: %.2f%% done. %.0f %s/s", p.name,
			float64(p.items.Load())*100/float64(p.totalItems), rate, p.itemName)
	default:
		log.Info().Msgf("%s: %d %s so far. %.0f %s/s", p.name, p.items.Load(), p.itemName, rate, p.itemName)
	}
}

func (p *progress) Step() {
	p.steps.Add(1)
}

func (p *progress) Item() {
	p.items.Add(1)
}

// Write counts bytes as items, for io.TeeReader.
func (p *progress) Write(b []byte) (int, error) {
	p.items.Add(uint64(len(b)))
	return len(b), nil
}

// Request records a completed HTTP request. Cloudflare served responses
// report cache hits in CF-Cache-Status.
func (p *progress) Request(res *http.Response, took time.Duration) {
	p.requests.Add(1)
	p.requestMillis.Add(uint64(took.Milliseconds()))
	if res.Header.Get("CF-Cache-Status") == "HIT" {
		p.cacheHits.Add(1)
	}
}

func (p *progress) itemsPerSecond() float64 {
	items := float64(p.items.Load())
	if elapsed := time.Since(p.start); elapsed > 0 {
		return items / elapsed.Seconds()
	}
	return items
}

// Done stops the periodic log and prints a summary. Safe to call twice.
func (p *progress) Done() {
	p.once.Do(func() {
		close(p.stop)

		printer := message.NewPrinter(language.English)
		log.Info().Msgf("%s: finished %s %s in %v. %.0f %s/s", p.name,
			printer.Sprintf("%d", p.items.Load()), p.itemName, time.Since(p.start).Round(time.Millisecond),
			p.itemsPerSecond(), p.itemName)

		requests := p.requests.Load()
		if requests == 0 {
			return
		}
		hits := p.cacheHits.Load()
		log.Debug().Msgf("%s: %s requests, average response time %.2f ms, cache hits %s (%.2f%%)", p.name,
			printer.Sprintf("%d", requests), float64(p.requestMillis.Load())/float64(requests),
			printer.Sprintf("%d", hits), float64(hits)*100/float64(requests))
	})
}
