package session

// Пакет session хранит MTProto-сессию в одном текстовом файле.
// Жизненный цикл за прогон:
//   - Load читает файл (отсутствие или ошибка чтения — «первый запуск», пустая сессия);
//   - Memory кладёт прочитанное в tdsession.StorageMemory, с которой работает клиент;
//   - Persist после успешного логина выгружает актуальную сессию из памяти и
//     безусловно перезаписывает файл.
// Клиент пишет только в память, поэтому файл обновляется не чаще раза за прогон.

import (
	"bytes"
	"context"
	"os"
	"sync"

	"telegram-nuke/internal/infra/logger"
	"telegram-nuke/internal/infra/storage"

	"github.com/go-faster/errors"
	tdsession "github.com/gotd/td/session"
	"go.uber.org/zap"
)

// FileStore — файл сессии на диске. Потокобезопасен.
type FileStore struct {
	Path string
	mux  sync.Mutex
}

// NewFileStore создаёт хранилище для path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load читает сессию. Возвращает nil без ошибки, если файла нет или он не читается.
func (f *FileStore) Load() []byte {
	f.mux.Lock()
	defer f.mux.Unlock()

	data, err := os.ReadFile(f.Path)
	switch {
	case os.IsNotExist(err):
		logger.Info("No saved session, interactive login required", zap.String("path", f.Path))
		return nil
	case err != nil:
		logger.Warn("Session file is unreadable, starting blank", zap.String("path", f.Path), zap.Error(err))
		return nil
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		logger.Info("Session file is empty, interactive login required", zap.String("path", f.Path))
		return nil
	}
	logger.Info("Loaded existing session.")
	return data
}

// Save атомарно перезаписывает файл сессии обрезанными данными.
func (f *FileStore) Save(data []byte) error {
	f.mux.Lock()
	defer f.mux.Unlock()

	if err := storage.AtomicWriteFile(f.Path, bytes.TrimSpace(data)); err != nil {
		return errors.Wrap(err, "atomic write session")
	}
	return nil
}

// Memory возвращает хранилище в памяти, заполненное данными из файла.
func (f *FileStore) Memory(ctx context.Context) (*tdsession.StorageMemory, error) {
	mem := new(tdsession.StorageMemory)
	data := f.Load()
	if len(data) == 0 {
		return mem, nil
	}
	if err := mem.StoreSession(ctx, data); err != nil {
		return nil, errors.Wrap(err, "seed memory session")
	}
	return mem, nil
}

// Persist выгружает актуальную сессию из mem и записывает её в файл.
func (f *FileStore) Persist(ctx context.Context, mem tdsession.Storage) error {
	data, err := mem.LoadSession(ctx)
	if err != nil {
		return errors.Wrap(err, "dump session")
	}
	if err = f.Save(data); err != nil {
		return err
	}
	logger.Info("Session saved.", zap.String("path", f.Path))
	return nil
}
