// pkg/chunk/file_store.go

package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"glacierlist/pkg/compress"

	"github.com/google/uuid"
	"github.com/juju/ratelimit"
	"github.com/pkg/errors"
)

// StoreConfig tunes a file-backed store. The zero value means plain
// JSON-on-disk with no compression, encryption or throttling.
type StoreConfig struct {
	Compress  string // none, lz4 or zstd
	SecretKey string // passphrase; chunk files are AES-GCM encrypted when set
	PutLimit  int64  // bytes written per second, 0 means unlimited
	GetLimit  int64  // bytes read per second, 0 means unlimited
}

const chunkSuffix = ".chk"

var chunkMagic = []byte("GLC1")

var (
	chunkFileRe = regexp.MustCompile(`^chunk_(\d+)\.chk$`)
	chunkTmpRe  = regexp.MustCompile(`^chunk_\d+\.chk\.tmp\.`)
)

type fileStore struct {
	dir        string
	codec      Codec
	compressor compress.Compressor
	encryptor  Encryptor
	putLimit   *ratelimit.Bucket
	getLimit   *ratelimit.Bucket
}

// NewFileStore creates a store owning dir, creating it if needed. Each
// chunk lives in its own file; a file is only ever replaced wholesale.
func NewFileStore(dir string, codec Codec, conf *StoreConfig) (Store, error) {
	if conf == nil {
		conf = &StoreConfig{}
	}
	compressor := compress.NewCompressor(conf.Compress)
	if compressor == nil {
		return nil, fmt.Errorf("unsupported compress algorithm: %s", conf.Compress)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "create storage root %s", dir)
	}
	s := &fileStore{dir: dir, codec: codec, compressor: compressor}
	if conf.SecretKey != "" {
		s.encryptor = NewAESEncryptor(conf.SecretKey)
	}
	if conf.PutLimit > 0 {
		s.putLimit = ratelimit.NewBucketWithRate(float64(conf.PutLimit), conf.PutLimit)
	}
	if conf.GetLimit > 0 {
		s.getLimit = ratelimit.NewBucketWithRate(float64(conf.GetLimit), conf.GetLimit)
	}
	return s, nil
}

func (s *fileStore) Path(ordinal int) string {
	return filepath.Join(s.dir, fmt.Sprintf("chunk_%06d%s", ordinal, chunkSuffix))
}

func (s *fileStore) Save(ordinal int, recs []Record) error {
	data, err := s.codec.Encode(recs)
	if err != nil {
		return errors.Wrapf(err, "encode chunk %d", ordinal)
	}
	blob, err := s.seal(data)
	if err != nil {
		return errors.Wrapf(err, "seal chunk %d", ordinal)
	}
	if s.putLimit != nil {
		s.putLimit.Wait(int64(len(blob)))
	}
	path := s.Path(ordinal)
	tmp := path + ".tmp." + uuid.New().String()[:8]
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		return errors.Wrapf(err, "write chunk %d", ordinal)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "replace chunk %d", ordinal)
	}
	logger.Debugf("saved chunk %d (%d records, %d bytes)", ordinal, len(recs), len(blob))
	return nil
}

func (s *fileStore) Load(ordinal int) ([]Record, error) {
	blob, err := os.ReadFile(s.Path(ordinal))
	if err != nil {
		return nil, errors.Wrapf(err, "load chunk %d", ordinal)
	}
	if s.getLimit != nil {
		s.getLimit.Wait(int64(len(blob)))
	}
	data, err := s.unseal(blob)
	if err != nil {
		return nil, errors.Wrapf(err, "unseal chunk %d", ordinal)
	}
	recs, err := s.codec.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode chunk %d", ordinal)
	}
	return recs, nil
}

// seal frames the encoded records as MAGIC | raw length | compressed
// payload, then encrypts the whole frame when encryption is on.
func (s *fileStore) seal(data []byte) ([]byte, error) {
	buf := make([]byte, 8+s.compressor.CompressBound(len(data)))
	copy(buf[:4], chunkMagic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(data)))
	n, err := s.compressor.Compress(buf[8:], data)
	if err != nil {
		return nil, err
	}
	blob := buf[:8+n]
	if s.encryptor != nil {
		return s.encryptor.Encrypt(blob)
	}
	return blob, nil
}

func (s *fileStore) unseal(blob []byte) ([]byte, error) {
	if s.encryptor != nil {
		var err error
		blob, err = s.encryptor.Decrypt(blob)
		if err != nil {
			return nil, err
		}
	}
	if len(blob) < 8 || !bytes.Equal(blob[:4], chunkMagic) {
		return nil, errors.New("corrupt chunk: bad header")
	}
	rawLen := binary.LittleEndian.Uint32(blob[4:8])
	data := make([]byte, rawLen)
	n, err := s.compressor.Decompress(data, blob[8:])
	if err != nil {
		return nil, err
	}
	return data[:n], nil
}

// DeleteAll removes every chunk file (and leftover temp file) under the
// root. Unrelated files, including the manifest, are left alone.
func (s *fileStore) DeleteAll() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "read storage root %s", s.dir)
	}
	var removed int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !chunkFileRe.MatchString(name) && !chunkTmpRe.MatchString(name) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return errors.Wrapf(err, "remove %s", name)
		}
		removed++
	}
	if removed > 0 {
		logger.Debugf("removed %d chunk files under %s", removed, s.dir)
	}
	return nil
}

// Scan reports how many consecutive chunks, starting at ordinal 0, are
// present under the root. It is a best-effort recovery helper; the
// sequence that owns the store keeps the authoritative count.
func (s *fileStore) Scan() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, errors.Wrapf(err, "read storage root %s", s.dir)
	}
	seen := make(map[int]bool)
	for _, e := range entries {
		m := chunkFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		if k, err := strconv.Atoi(m[1]); err == nil {
			seen[k] = true
		}
	}
	var n int
	for seen[n] {
		n++
	}
	if len(seen) != n {
		logger.Warnf("storage root %s has %d chunk files but only %d consecutive from 0", s.dir, len(seen), n)
	}
	return n, nil
}
