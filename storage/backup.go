package storage

import (
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Shared encoder/decoder, built once: zstd state construction is too
// expensive to repeat per backup. SpeedDefault is fine here since backups
// run far off the hot path, unlike per-write compression.
var (
	backupEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	backupDecoder, _ = zstd.NewReader(nil)
)

// Backup copies the current on-disk file to dstPath, compressing it with
// zstd when compress is true. The storage file is held under its shared
// lock for the duration of the copy so a concurrent writer cannot tear a
// record in half mid-backup.
func (s *Storage) Backup(dstPath string, compress bool) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	if err := s.file.Sync(); err != nil {
		return err
	}

	dir, name := splitDir(dstPath)
	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	src := io.NewSectionReader(s.file, 0, s.tail)
	if compress {
		enc := backupEncoder.Reset(tmp)
		if _, err := io.Copy(enc, src); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
		if err := enc.Close(); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	} else {
		if _, err := io.Copy(tmp, src); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, dstPath)
}

// Restore replaces the storage file's contents with the contents of
// srcPath (previously written by Backup), transparently decompressing
// when compressed is true. The caller must hold the engine's exclusive
// state before calling Restore; Storage itself only swaps its own file
// handle and clears the WAL.
func (s *Storage) Restore(srcPath string, compressed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dir, name := splitDir(s.path)
	tmp, err := os.CreateTemp(dir, name+".restore-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	var reader io.Reader = src
	if compressed {
		dec := backupDecoder
		if err := dec.Reset(src); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return err
		}
		reader = dec
	}
	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	s.lock.release()
	s.lock.setFile(nil)
	if err := s.file.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return err
	}
	file, err := os.OpenFile(s.path, os.O_RDWR, 0644)
	if err != nil {
		return err
	}
	s.file = file
	s.lock.setFile(file)
	if err := s.lock.acquire(); err != nil {
		return err
	}

	if err := s.wal.clear(); err != nil {
		return err
	}
	return s.scanRecords()
}
