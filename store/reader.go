package store

import (
	"bufio"
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/share/models"
	"github.com/hostpulse/hostpulse/share/ptr"
	"github.com/hostpulse/hostpulse/share/simpleops"
)

// ErrNoSamples is returned when nothing has been recorded yet.
var ErrNoSamples = errors.New("no samples recorded")

// Reader is the read side of the dual-buffer persistence. It merges the
// durable file with the scratch tail maintained by the sampler process and
// never writes to either. Unreadable lines are skipped, one bad record
// must not hide weeks of good ones.
type Reader struct {
	conf *config.MonitoringConfig
	log  *logger.Logger
}

func NewReader(conf *config.MonitoringConfig, log *logger.Logger) *Reader {
	return &Reader{conf: conf, log: log}
}

// All returns every stored sample in write order: durable records first,
// then the unflushed tail.
func (r *Reader) All() ([]*models.Sample, error) {
	durable, err := r.durableSamples()
	if err != nil {
		return nil, err
	}
	tail, err := r.scratchSamples()
	if err != nil {
		// the durable records are still usable without the tail
		r.log.Errorf("could not read scratch tail: %v", err)
		tail = nil
	}

	var lastDurable time.Time
	if len(durable) > 0 {
		lastDurable = durable[len(durable)-1].Timestamp
	}
	merged := durable
	for _, sample := range tail {
		if !sample.Timestamp.After(lastDurable) {
			// already flushed by a writer that crashed before the
			// scratch rewrite caught up
			continue
		}
		merged = append(merged, sample)
	}
	return merged, nil
}

// Window returns the samples visible in w, the hour window ending at now.
func (r *Reader) Window(w Window, now time.Time) ([]*models.Sample, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	span := w.Span()
	if span == 0 {
		return all, nil
	}

	cutoff := now.Add(-span)
	out := simpleops.FilterSlice(all, func(s *models.Sample) bool {
		return !s.Timestamp.Before(cutoff)
	})
	if w == WindowHour && r.conf.HourBucketByMinute {
		out = bucketByMinute(out)
	}
	return out, nil
}

// Latest returns the most recent sample, preferring the scratch tail over
// the durable file, or ErrNoSamples.
func (r *Reader) Latest() (*models.Sample, error) {
	tail, err := r.scratchSamples()
	if err != nil {
		r.log.Errorf("could not read scratch tail: %v", err)
	}
	if len(tail) > 0 {
		return tail[len(tail)-1], nil
	}

	durable, err := r.durableSamples()
	if err != nil {
		return nil, err
	}
	if len(durable) > 0 {
		return durable[len(durable)-1], nil
	}
	return nil, ErrNoSamples
}

// StorageStatus summarizes what the reader can currently see.
type StorageStatus struct {
	DurableRecords int        `json:"durable_records"`
	TailRecords    int        `json:"tail_records"`
	DurableBytes   int64      `json:"durable_bytes"`
	OldestRecord   *time.Time `json:"oldest_record,omitempty"`
	NewestRecord   *time.Time `json:"newest_record,omitempty"`
}

func (r *Reader) Status() (*StorageStatus, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}
	tail, err := r.scratchSamples()
	if err != nil {
		tail = nil
	}

	status := &StorageStatus{
		TailRecords:    len(tail),
		DurableRecords: len(all) - len(tail),
	}
	if status.DurableRecords < 0 {
		// tail overlap was deduplicated during the merge
		status.DurableRecords = 0
	}
	if info, err := os.Stat(r.conf.DataFile()); err == nil {
		status.DurableBytes = info.Size()
	}
	if len(all) > 0 {
		status.OldestRecord = ptr.Time(all[0].Timestamp)
		status.NewestRecord = ptr.Time(all[len(all)-1].Timestamp)
	}
	return status, nil
}

func (r *Reader) durableSamples() ([]*models.Sample, error) {
	file, err := os.Open(r.conf.DataFile())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "open durable file")
	}
	defer file.Close()

	var samples []*models.Sample
	corrupt := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		sample := &models.Sample{}
		if err := json.Unmarshal(line, sample); err != nil || sample.Timestamp.IsZero() {
			corrupt++
			continue
		}
		samples = append(samples, sample)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan durable file")
	}
	if corrupt > 0 {
		r.log.Debugf("skipped %d unreadable records in %s", corrupt, r.conf.DataFile())
	}
	return samples, nil
}

func (r *Reader) scratchSamples() ([]*models.Sample, error) {
	data, err := os.ReadFile(r.conf.ScratchFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read scratch file")
	}
	var samples []*models.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, errors.Wrap(err, "decode scratch file")
	}
	return samples, nil
}

// bucketByMinute thins a sample series to the first sample of each
// minute.
func bucketByMinute(samples []*models.Sample) []*models.Sample {
	seen := map[time.Time]bool{}
	out := make([]*models.Sample, 0, len(samples))
	for _, sample := range samples {
		key := sample.Timestamp.Truncate(time.Minute)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sample)
	}
	return out
}
