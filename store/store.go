package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hostpulse/hostpulse/share/config"
	"github.com/hostpulse/hostpulse/share/logger"
	"github.com/hostpulse/hostpulse/share/models"
)

// flushEvery is how often the tail is moved to the durable file.
const flushEvery = time.Hour

// maxLineSize bounds a single durable record, hosts with many devices
// still fit comfortably.
const maxLineSize = 1 << 20

// Store is the write side of the dual-buffer persistence:
//
//   - every sample is appended to an in-memory tail and the whole tail is
//     mirrored to a scratch file, replaced atomically so readers never see
//     a partial write;
//   - once per hour the tail is appended to the durable JSON-lines file,
//     the tail and its scratch mirror are cleared, and records older than
//     the retention period are dropped from the durable file.
//
// One process owns the durable and scratch files for writing. Readers in
// other processes only ever open them read-only.
type Store struct {
	conf *config.MonitoringConfig
	log  *logger.Logger

	mu        sync.Mutex
	tail      []*models.Sample
	lastFlush time.Time
	now       func() time.Time
}

func New(conf *config.MonitoringConfig, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(conf.DataDir, 0755); err != nil {
		return nil, errors.Wrap(err, "data dir")
	}
	if err := os.MkdirAll(filepath.Dir(conf.ScratchFile), 0755); err != nil {
		return nil, errors.Wrap(err, "scratch dir")
	}

	s := &Store{
		conf: conf,
		log:  log,
		tail: make([]*models.Sample, 0, 64),
		now:  time.Now,
	}
	s.lastFlush = s.now()

	if err := s.recoverScratch(); err != nil {
		// a broken scratch file must not stop the sampler
		log.Errorf("could not recover scratch tail: %v", err)
	}
	return s, nil
}

// Add appends the sample to the tail and mirrors the tail to the scratch
// file.
func (s *Store) Add(ctx context.Context, sample *models.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tail = append(s.tail, sample)
	return s.writeScratchLocked()
}

// MaybeFlush flushes when the last flush is at least an hour old.
func (s *Store) MaybeFlush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now().Sub(s.lastFlush) < flushEvery {
		return nil
	}
	return s.flushLocked()
}

// Flush appends the tail to the durable file, clears it, and applies the
// retention policy.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// TailLen returns the number of samples not yet flushed.
func (s *Store) TailLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tail)
}

func (s *Store) flushLocked() error {
	if len(s.tail) > 0 {
		if err := s.appendDurableLocked(); err != nil {
			// keep the tail so the samples go out with the next attempt
			return err
		}
		flushed := len(s.tail)
		s.tail = s.tail[:0]
		if err := s.writeScratchLocked(); err != nil {
			return err
		}
		s.log.Infof("flushed %d samples to %s", flushed, s.conf.DataFile())
	}
	s.lastFlush = s.now()
	return s.cleanupLocked()
}

func (s *Store) appendDurableLocked() error {
	file, err := os.OpenFile(s.conf.DataFile(), os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "open durable file")
	}

	w := bufio.NewWriter(file)
	for _, sample := range s.tail {
		line, err := json.Marshal(sample)
		if err != nil {
			file.Close()
			return errors.Wrap(err, "encode sample")
		}
		if _, err := w.Write(line); err != nil {
			file.Close()
			return errors.Wrap(err, "append sample")
		}
		if err := w.WriteByte('\n'); err != nil {
			file.Close()
			return errors.Wrap(err, "append sample")
		}
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return errors.Wrap(err, "append samples")
	}
	return errors.Wrap(file.Close(), "close durable file")
}

// writeScratchLocked replaces the scratch file with the current tail in a
// single rename so a concurrent reader sees either the old or the new
// tail, never a torn one.
func (s *Store) writeScratchLocked() error {
	data, err := json.Marshal(s.tail)
	if err != nil {
		return errors.Wrap(err, "encode tail")
	}

	dir := filepath.Dir(s.conf.ScratchFile)
	tmp, err := os.CreateTemp(dir, ".tail-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create scratch temp")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write scratch temp")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close scratch temp")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "chmod scratch temp")
	}
	if err := os.Rename(tmpName, s.conf.ScratchFile); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace scratch file")
	}
	return nil
}

// tsEnvelope decodes just enough of a record to apply retention.
type tsEnvelope struct {
	Timestamp time.Time `json:"timestamp"`
}

// cleanupLocked rewrites the durable file keeping only records younger
// than the retention cutoff. Surviving lines are carried over verbatim.
// The rewrite goes to a temp file first and replaces the durable file by
// rename, so a crash mid-cleanup cannot lose retained records.
func (s *Store) cleanupLocked() error {
	durable := s.conf.DataFile()
	cutoff := s.now().Add(-s.conf.Retention)

	kept, dropped, err := retainedLines(durable, cutoff)
	if err != nil {
		return err
	}
	if dropped == 0 {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(durable), ".durable-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create cleanup temp")
	}
	tmpName := tmp.Name()
	w := bufio.NewWriter(tmp)
	for _, line := range kept {
		if _, err := w.WriteString(line); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return errors.Wrap(err, "write cleanup temp")
		}
		if err := w.WriteByte('\n'); err != nil {
			tmp.Close()
			os.Remove(tmpName)
			return errors.Wrap(err, "write cleanup temp")
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "flush cleanup temp")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close cleanup temp")
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "chmod cleanup temp")
	}
	if err := os.Rename(tmpName, durable); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replace durable file")
	}
	s.log.Infof("retention removed %d records from %s", dropped, durable)
	return nil
}

// retainedLines returns the verbatim durable lines whose timestamps are at
// or after the cutoff, and how many lines were dropped. Lines that cannot
// be parsed count as dropped.
func retainedLines(path string, cutoff time.Time) (kept []string, dropped int, err error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, errors.Wrap(err, "open durable file")
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			dropped++
			continue
		}
		var env tsEnvelope
		if err := json.Unmarshal([]byte(line), &env); err != nil || env.Timestamp.IsZero() {
			dropped++
			continue
		}
		if env.Timestamp.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "scan durable file")
	}
	return kept, dropped, nil
}

// recoverScratch loads tail samples a previous run left behind. Samples
// already flushed to the durable file (possible when the writer crashed
// between the durable append and the scratch rewrite) are skipped.
func (s *Store) recoverScratch() error {
	data, err := os.ReadFile(s.conf.ScratchFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var orphaned []*models.Sample
	if err := json.Unmarshal(data, &orphaned); err != nil {
		return errors.Wrap(err, "decode scratch file")
	}
	if len(orphaned) == 0 {
		return nil
	}

	lastDurable, err := lastDurableTimestamp(s.conf.DataFile())
	if err != nil {
		return err
	}
	recovered := 0
	for _, sample := range orphaned {
		if !sample.Timestamp.After(lastDurable) {
			continue
		}
		s.tail = append(s.tail, sample)
		recovered++
	}
	if recovered > 0 {
		s.log.Infof("recovered %d unflushed samples from %s", recovered, s.conf.ScratchFile)
	}
	return nil
}

func lastDurableTimestamp(path string) (time.Time, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, nil
		}
		return time.Time{}, errors.Wrap(err, "open durable file")
	}
	defer file.Close()

	var last time.Time
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		var env tsEnvelope
		if err := json.Unmarshal(scanner.Bytes(), &env); err != nil {
			continue
		}
		if env.Timestamp.After(last) {
			last = env.Timestamp
		}
	}
	if err := scanner.Err(); err != nil {
		return time.Time{}, errors.Wrap(err, "scan durable file")
	}
	return last, nil
}
