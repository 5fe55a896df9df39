package util

import (
	"fmt"
	"net/http"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Stats returns a func that logs the elapsed time and memory stats when called.
func Stats() func() {
	start := time.Now()
	return func() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		log.Debug().Msgf("time to run %v", time.Since(start))
		log.Debug().Msgf("Alloc: %d MB, TotalAlloc: %d MB, Requested: %d MB",
			ms.Alloc/1024/1024, ms.TotalAlloc/1024/1024, ms.Sys/1024/1024)
		log.Debug().Msgf("HeapAlloc: %d MB, HeapSys: %d MB, HeapIdle: %d MB",
			ms.HeapAlloc/1024/1024, ms.HeapSys/1024/1024, ms.HeapIdle/1024/1024)
	}
}

func ApplyCliSettings(verbose bool, profile bool, pprofPort uint16) {
	if verbose {
		log.Warn().Msgf("verbosity up")
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if profile {
		log.Info().Msgf("profiling is enabled for this session. Server will listen on port %d", pprofPort)
		go func() {
			if err := http.ListenAndServe(fmt.Sprintf("localhost:%d", pprofPort), nil); err != nil {
				log.Error().Err(err).Msgf("error starting profiling server on port %d", pprofPort)
				return
			}
		}()
	}
}

// CheckRam fails when holding items 64-bit keys would not fit in the
// available memory. If memory stats are unavailable it only warns.
func CheckRam(items uint64) error {
	required := items * 8
	memStat, err := mem.VirtualMemory()
	if err != nil {
		log.Warn().Msgf("estimated memory use for %d items is %d MiB. This process will swap if "+
			"that much memory is not available", items, required/(1024*1024))
		return nil
	}

	log.Debug().Msgf("system has %.2f MiB of RAM available", float64(memStat.Available)/(1024*1024))
	if required > memStat.Available {
		return fmt.Errorf("%d items need %d MiB of RAM, only %d MiB available",
			items, required/(1024*1024), memStat.Available/(1024*1024))
	}
	return nil
}

// CheckDiskSpace fails when the partition holding fileName has less than
// sizeGb GiB free. Unknown partitions are not checked.
func CheckDiskSpace(fileName string, sizeGb float64) error {
	if abs, err := filepath.Abs(fileName); err == nil {
		fileName = abs
	}

	parts, err := disk.Partitions(false)
	if err != nil {
		log.Debug().Err(err).Msgf("error getting current storage sizes")
		return nil
	}

	// longest mountpoint containing the file wins
	mount := ""
	for _, part := range parts {
		if strings.HasPrefix(fileName, part.Mountpoint) && len(part.Mountpoint) > len(mount) {
			mount = part.Mountpoint
		}
	}
	if mount == "" {
		return nil
	}

	usage, err := disk.Usage(mount)
	if err != nil {
		log.Debug().Err(err).Msgf("error getting storage usage of %s", mount)
		return nil
	}

	log.Debug().Msgf("%s has %.2f GiB free", mount, float64(usage.Free)/(1024*1024*1024))
	if required := uint64(sizeGb * 1024 * 1024 * 1024); required > usage.Free {
		return fmt.Errorf("drive %s does not have %.2f GiB free for the download", mount, sizeGb)
	}
	return nil
}

// ToScreamingSnakeCase turns Go identifiers and validator params like
// "TLSCert TLSKey" into "TLS_CERT TLS_KEY".
func ToScreamingSnakeCase(s string) string {
	var sb strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 && runes[i-1] != ' ' {
			prevLower := unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				sb.WriteRune('_')
			}
		}
		sb.WriteRune(unicode.ToUpper(r))
	}
	return sb.String()
}
