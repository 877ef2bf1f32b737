package report

import (
	stderrors "errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"

	"instviz/domain/core"
	"instviz/internal/errors"
	"instviz/internal/logging"
)

// Store keeps finished reports for later requests. Images are not stored;
// callers re-render them with Builder.Render.
type Store interface {
	Put(rep *Report) error
	Get(id core.ReportID) (*Report, error)
	// Lookup finds a report previously built from identical input
	Lookup(fingerprint core.Hash) (core.ReportID, bool)
	Enabled() bool
	Close()
}

// NewStore returns a freecache backed store, or a no-op store when
// sizeMB is zero
func NewStore(sizeMB int, ttl time.Duration, logger *logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	if sizeMB <= 0 {
		logger.Info("[ReportStore] report cache disabled")
		return &noopStore{}, nil
	}

	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	seconds := max(int(ttl.Seconds()), 1)
	logger.Info("[ReportStore] report cache initialized: %dMB, TTL=%ds", sizeMB, seconds)

	return &cacheStore{
		cache:   freecache.NewCache(sizeMB * 1024 * 1024),
		ttl:     seconds,
		encoder: encoder,
		decoder: decoder,
		logger:  logger,
	}, nil
}

type cacheStore struct {
	cache   *freecache.Cache
	ttl     int
	encoder *zstd.Encoder
	decoder *zstd.Decoder
	logger  *logging.Logger
}

func reportKey(id core.ReportID) []byte {
	return []byte("report:" + id.String())
}

func sourceKey(h core.Hash) []byte {
	return []byte("source:" + h.String())
}

func (s *cacheStore) Enabled() bool { return true }

func (s *cacheStore) Close() {
	s.decoder.Close()
	_ = s.encoder.Close()
}

func (s *cacheStore) Put(rep *Report) error {
	raw, err := json.Marshal(rep)
	if err != nil {
		return errors.Wrap(err, "failed to encode report")
	}
	packed := s.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2))

	if err := s.cache.Set(reportKey(rep.ID), packed, s.ttl); err != nil {
		if stderrors.Is(err, freecache.ErrLargeEntry) {
			return errors.InvalidInputf(err, "report %s is too large to keep (%d bytes)", rep.ID, len(packed))
		}
		return errors.Wrapf(err, "failed to store report %s", rep.ID)
	}
	if !rep.Fingerprint.IsEmpty() {
		_ = s.cache.Set(sourceKey(rep.Fingerprint), []byte(rep.ID.String()), s.ttl)
	}

	s.logger.Debug("[ReportStore] stored %s: %d bytes json, %d bytes packed", rep.ID, len(raw), len(packed))
	return nil
}

func (s *cacheStore) Get(id core.ReportID) (*Report, error) {
	packed, err := s.cache.Get(reportKey(id))
	if err != nil {
		return nil, errors.NotFound("report " + id.String())
	}
	raw, err := s.decoder.DecodeAll(packed, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decompress report %s", id)
	}

	var rep Report
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, errors.Wrapf(err, "failed to decode report %s", id)
	}
	return &rep, nil
}

func (s *cacheStore) Lookup(fingerprint core.Hash) (core.ReportID, bool) {
	if fingerprint.IsEmpty() {
		return "", false
	}
	val, err := s.cache.Get(sourceKey(fingerprint))
	if err != nil {
		return "", false
	}
	id := core.ReportID(val)
	// the report itself may have been evicted before its fingerprint
	if _, err := s.cache.Get(reportKey(id)); err != nil {
		return "", false
	}
	return id, true
}

type noopStore struct{}

func (n *noopStore) Put(_ *Report) error { return nil }
func (n *noopStore) Get(id core.ReportID) (*Report, error) {
	return nil, errors.NotFound("report " + id.String())
}
func (n *noopStore) Lookup(_ core.Hash) (core.ReportID, bool) { return "", false }
func (n *noopStore) Enabled() bool                            { return false }
func (n *noopStore) Close()                                   {}
