// Package storage — запись локальных файлов без частичных состояний.
// AtomicWriteFile используется для файла сессии: обрыв посреди записи не должен
// оставить на диске половину учётных данных. EnsureDir и DefaultFilePerm общие
// для всех локальных файлов (сессия, журнал).
package storage

import (
	"os"
	"path/filepath"

	"telegram-nuke/internal/infra/logger"

	"github.com/go-faster/errors"
)

// DefaultFilePerm — права итоговых файлов: только владелец.
const DefaultFilePerm os.FileMode = 0o600

// EnsureDir создаёт каталог для path, если он указан.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "create dir %s", dir)
	}
	return nil
}

// AtomicWriteFile пишет data во временный файл рядом с path, синхронизирует его
// и переименовывает поверх path. Либо остаётся старый файл, либо появляется новый целиком.
func AtomicWriteFile(path string, data []byte) error {
	target := filepath.Clean(path)
	if err := EnsureDir(target); err != nil {
		return err
	}
	dir := filepath.Dir(target)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err = writeAndSync(tmp, data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err = os.Rename(tmpName, target); err != nil {
		return errors.Wrap(err, "rename temp file")
	}

	if d, openErr := os.Open(dir); openErr == nil {
		if syncErr := d.Sync(); syncErr != nil {
			logger.Debugf("AtomicWriteFile: dir sync: %v", syncErr)
		}
		_ = d.Close()
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := f.Sync(); err != nil {
		return errors.Wrap(err, "fsync temp file")
	}
	if err := f.Chmod(DefaultFilePerm); err != nil {
		return errors.Wrap(err, "chmod temp file")
	}
	return nil
}
