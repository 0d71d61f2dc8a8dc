package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/jpillora/sizestr"

	"github.com/hostpulse/hostpulse/share/models"
	"github.com/hostpulse/hostpulse/store"
)

const timeFormat = "2006-01-02 15:04:05 UTC"

// printSampleJSON encodes the sample as indented JSON, exactly as it is
// stored on disk.
func printSampleJSON(out io.Writer, sample *models.Sample) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(sample)
}

// printSampleDetail prints a vertical key-value table of the sample
// followed by storage counters.
func printSampleDetail(out io.Writer, hostname string, sample *models.Sample, status *store.StorageStatus) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if hostname != "" {
		fmt.Fprintf(w, "  Host:\t%s\n", hostname)
	}
	fmt.Fprintf(w, "  Sampled:\t%s (%s ago)\n",
		sample.Timestamp.UTC().Format(timeFormat),
		time.Since(sample.Timestamp).Round(time.Second))
	fmt.Fprintf(w, "  CPU:\t%.1f%%\n", sample.CPUUsage)
	if sample.CPUTemp != nil {
		fmt.Fprintf(w, "  CPU temp:\t%.1f°C\n", *sample.CPUTemp)
	}
	fmt.Fprintf(w, "  Memory:\t%.1f%%\n", sample.MemoryUsage)

	for _, path := range sortedKeys(sample.DiskUsage) {
		if pct := sample.DiskUsage[path]; pct != nil {
			fmt.Fprintf(w, "  Disk %s:\t%.1f%%\n", path, *pct)
		} else {
			fmt.Fprintf(w, "  Disk %s:\tunreadable\n", path)
		}
	}
	for _, iface := range sortedKeys(sample.Network) {
		rate := sample.Network[iface]
		fmt.Fprintf(w, "  Net %s:\trx %s  tx %s\n", iface, rateString(rate.Rx), rateString(rate.Tx))
	}
	for _, dev := range sortedKeys(sample.DiskIO) {
		rate := sample.DiskIO[dev]
		fmt.Fprintf(w, "  I/O %s:\tread %s  write %s\n", dev, rateString(rate.Read), rateString(rate.Write))
	}

	fmt.Fprintf(w, "  \t\n")
	fmt.Fprintf(w, "  Durable:\t%d records (%s)\n", status.DurableRecords, sizestr.ToString(status.DurableBytes))
	fmt.Fprintf(w, "  Buffered:\t%d records\n", status.TailRecords)
	if status.OldestRecord != nil {
		fmt.Fprintf(w, "  Oldest:\t%s\n", status.OldestRecord.UTC().Format(timeFormat))
	}

	w.Flush()
}

func rateString(bytesPerSecond float64) string {
	return sizestr.ToString(int64(bytesPerSecond)) + "/s"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
