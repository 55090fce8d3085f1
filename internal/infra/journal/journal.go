// Package journal — необязательный журнал попыток чистки на bbolt.
// Каждый прогон пишет в собственный вложенный bucket (имя — время старта в UTC),
// записи упорядочены по sequence bucket'а. Журнал нужен, чтобы после прогона
// можно было понять, что именно было покинуто/удалено и что упало.
package journal

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strings"
	"time"

	"telegram-nuke/internal/domain/cleanup"
	"telegram-nuke/internal/infra/storage"

	"github.com/go-faster/errors"
	"go.etcd.io/bbolt"
)

const (
	runsBucketName = "runs"
	dbOpenTimeout  = time.Second
	runKeyLayout   = "20060102T150405.000000000Z"
)

var runsBucket = []byte(runsBucketName)

// Journal реализует cleanup.Recorder.
type Journal struct {
	db  *bbolt.DB
	run []byte
}

var _ cleanup.Recorder = (*Journal)(nil)

// Open открывает (или создаёт) файл журнала и заводит bucket прогона, начатого в started.
func Open(path string, started time.Time) (*Journal, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil, errors.New("journal: path is empty")
	}
	if err := storage.EnsureDir(clean); err != nil {
		return nil, errors.Wrap(err, "journal: ensure dir")
	}

	db, err := bbolt.Open(clean, storage.DefaultFilePerm, &bbolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, errors.Wrap(err, "journal: open db")
	}

	j := &Journal{db: db, run: []byte(started.UTC().Format(runKeyLayout))}
	err = db.Update(func(tx *bbolt.Tx) error {
		runs, bucketErr := tx.CreateBucketIfNotExists(runsBucket)
		if bucketErr != nil {
			return bucketErr
		}
		_, bucketErr = runs.CreateBucketIfNotExists(j.run)
		return bucketErr
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "journal: create run bucket")
	}
	return j, nil
}

// OpenReadOnly открывает существующий журнал только для чтения, не заводя новый прогон.
// Record на таком журнале возвращает ошибку.
func OpenReadOnly(path string) (*Journal, error) {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return nil, errors.New("journal: path is empty")
	}
	db, err := bbolt.Open(clean, storage.DefaultFilePerm, &bbolt.Options{Timeout: dbOpenTimeout, ReadOnly: true})
	if err != nil {
		return nil, errors.Wrap(err, "journal: open db")
	}
	return &Journal{db: db}, nil
}

// Run возвращает ключ текущего прогона. Пусто для журнала, открытого на чтение.
func (j *Journal) Run() string {
	return string(j.run)
}

// Record добавляет попытку в bucket текущего прогона.
func (j *Journal) Record(_ context.Context, a cleanup.Attempt) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return errors.Wrap(err, "journal: marshal attempt")
	}
	return j.db.Update(func(tx *bbolt.Tx) error {
		if len(j.run) == 0 {
			return errors.New("journal: opened read-only")
		}
		root := tx.Bucket(runsBucket)
		if root == nil {
			return errors.New("journal: runs bucket is missing")
		}
		bucket := root.Bucket(j.run)
		if bucket == nil {
			return errors.Errorf("journal: run bucket %q is missing", j.run)
		}
		seq, seqErr := bucket.NextSequence()
		if seqErr != nil {
			return seqErr
		}
		return bucket.Put(seqKey(seq), payload)
	})
}

// Runs возвращает ключи всех прогонов в хронологическом порядке.
func (j *Journal) Runs() ([]string, error) {
	var runs []string
	err := j.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(runsBucket)
		if root == nil {
			return nil
		}
		return root.ForEachBucket(func(k []byte) error {
			runs = append(runs, string(k))
			return nil
		})
	})
	return runs, err
}

// Attempts возвращает попытки прогона run в порядке записи.
func (j *Journal) Attempts(run string) ([]cleanup.Attempt, error) {
	var result []cleanup.Attempt
	err := j.db.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(runsBucket)
		if root == nil {
			return nil
		}
		bucket := root.Bucket([]byte(run))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(_, v []byte) error {
			var a cleanup.Attempt
			if err := json.Unmarshal(v, &a); err != nil {
				return err
			}
			result = append(result, a)
			return nil
		})
	})
	if err != nil {
		return nil, errors.Wrap(err, "journal: read attempts")
	}
	return result, nil
}

// Close закрывает файл журнала.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
