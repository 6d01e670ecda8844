package service

import (
	stderrors "errors"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/darkodi/shortstore/internal/encoder"
	"github.com/darkodi/shortstore/internal/errors"
	"github.com/darkodi/shortstore/internal/logger"
	"github.com/darkodi/shortstore/internal/model"
	"github.com/darkodi/shortstore/internal/repository"
	"github.com/darkodi/shortstore/internal/validator"
)

// ErrIDSpaceExhausted is returned once every uint64 id has been handed out.
var ErrIDSpaceExhausted = stderrors.New("id space exhausted")

// URLService owns the code -> mapping table and keeps the backend in step
// with it. Every mutation is written through before it becomes visible in
// memory, so a failed save leaves both sides unchanged.
//
// Duplicate-URL detection uses an in-memory url -> code index; the table
// itself is still rewritten in full on every mutation, which bounds the
// practical size to what a single-user tool needs.
type URLService struct {
	mu        sync.RWMutex
	repo      repository.Backend
	validator *validator.URLValidator
	log       *logger.Logger
	now       func() time.Time

	order  []string             // codes in insertion order
	byCode map[string]model.URL // code -> mapping
	byURL  map[string]string    // long URL -> code
	nextID uint64
}

// Option configures a URLService
type Option func(*URLService)

// WithLogger sets the logger used for load summaries and warnings.
func WithLogger(log *logger.Logger) Option {
	return func(s *URLService) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides time.Now for createdAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *URLService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewURLService creates a new service instance with an empty table. Call
// Load before serving requests.
func NewURLService(repo repository.Backend, v *validator.URLValidator, opts ...Option) *URLService {
	if v == nil {
		v = validator.NewURLValidator()
	}
	s := &URLService{
		repo:      repo,
		validator: v,
		log:       logger.Discard(),
		now:       time.Now,
		byCode:    make(map[string]model.URL),
		byURL:     make(map[string]string),
		nextID:    1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory table with the backend contents and derives
// the next id from the highest stored id.
func (s *URLService) Load() error {
	urls, err := s.repo.Load()
	if err != nil {
		if !errors.IsStorageFailure(err) {
			err = errors.StorageFailure("load", err)
		}
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	order := make([]string, 0, len(urls))
	byCode := make(map[string]model.URL, len(urls))
	byURL := make(map[string]string, len(urls))
	seenIDs := make(map[uint64]string, len(urls))
	var maxID uint64
	for _, u := range urls {
		if _, dup := byCode[u.ShortCode]; dup {
			s.log.Warn("skipping duplicate code", "code", u.ShortCode, "id", u.ID)
			continue
		}
		if other, dup := seenIDs[u.ID]; dup {
			s.log.Warn("id shared by more than one code", "id", u.ID, "code", u.ShortCode, "first_code", other)
		} else {
			seenIDs[u.ID] = u.ShortCode
		}
		if id, err := encoder.Decode(u.ShortCode); err != nil || id != u.ID {
			s.log.Warn("code does not encode its id", "code", u.ShortCode, "id", u.ID)
		}
		order = append(order, u.ShortCode)
		byCode[u.ShortCode] = u
		if _, dup := byURL[u.OriginalURL]; dup {
			s.log.Warn("url mapped by more than one code", "url", u.OriginalURL, "code", u.ShortCode)
		} else {
			byURL[u.OriginalURL] = u.ShortCode
		}
		if u.ID > maxID {
			maxID = u.ID
		}
	}

	s.order, s.byCode, s.byURL = order, byCode, byURL
	s.nextID = maxID + 1

	s.log.Info("loaded mappings",
		"count", len(order),
		"next_id", s.nextID,
		"backend", s.repo.Name())
	return nil
}

// Shorten returns the code for longURL, allocating one if the URL is new.
func (s *URLService) Shorten(longURL string) (string, error) {
	// ============ STEP 1: Validation ============
	if err := s.validator.ValidateURL(longURL); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// ============ STEP 2: Reuse existing code ============
	if code, ok := s.byURL[longURL]; ok {
		return code, nil
	}

	// ============ STEP 3: Allocate ============
	id := s.nextID
	code := encoder.Encode(id)
	for {
		if id == 0 {
			return "", errors.StorageFailure("allocate", ErrIDSpaceExhausted)
		}
		if _, taken := s.byCode[code]; !taken {
			break
		}
		// only reachable when stored codes do not match their ids
		s.log.Warn("code already taken, drawing next id", "code", code, "id", id)
		id++
		code = encoder.Encode(id)
	}

	urlRecord := model.URL{
		ID:          id,
		ShortCode:   code,
		OriginalURL: longURL,
		CreatedAt:   s.now().Local().Truncate(time.Second),
	}

	// ============ STEP 4: Persist, then commit ============
	if err := s.persist(append(s.snapshot(), urlRecord)); err != nil {
		return "", err
	}

	s.order = append(s.order, code)
	s.byCode[code] = urlRecord
	s.byURL[longURL] = code
	s.nextID = id + 1

	s.log.Debug("shortened url", "code", code, "id", id)
	return code, nil
}

// LookupByCode returns the mapping stored under code.
func (s *URLService) LookupByCode(code string) (model.URL, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	urlRecord, ok := s.byCode[code]
	if !ok {
		return model.URL{}, errors.URLNotFound(code)
	}
	return urlRecord, nil
}

// LookupByURL returns the code assigned to longURL (exact match).
func (s *URLService) LookupByURL(longURL string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	code, ok := s.byURL[longURL]
	if !ok {
		return "", errors.NotFound("short code for " + longURL)
	}
	return code, nil
}

// List returns every mapping in insertion order. An empty table yields an
// empty, non-nil slice.
func (s *URLService) List() []model.URL {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.snapshot()
}

// Delete removes code and reports whether it existed. The id counter is
// left untouched so the code is never handed out again by this process.
func (s *URLService) Delete(code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	urlRecord, ok := s.byCode[code]
	if !ok {
		return false, nil
	}

	idx := slices.Index(s.order, code)
	remaining := make([]model.URL, 0, len(s.order)-1)
	for i, c := range s.order {
		if i != idx {
			remaining = append(remaining, s.byCode[c])
		}
	}
	if err := s.persist(remaining); err != nil {
		return false, err
	}

	s.order = slices.Delete(s.order, idx, idx+1)
	delete(s.byCode, code)
	if s.byURL[urlRecord.OriginalURL] == code {
		delete(s.byURL, urlRecord.OriginalURL)
		// re-point to a surviving duplicate left by a hand-edited table
		for _, c := range s.order {
			if s.byCode[c].OriginalURL == urlRecord.OriginalURL {
				s.byURL[urlRecord.OriginalURL] = c
				break
			}
		}
	}

	s.log.Info("deleted mapping", "code", code, "id", urlRecord.ID)
	return true, nil
}

// Export writes the table, in insertion order and in the mapping file
// format, to path. An existing file at path is replaced; the primary store
// is never written.
func (s *URLService) Export(path string) error {
	if path == "" {
		return errors.InvalidInput("export path is empty")
	}
	if s.isPrimaryFile(path) {
		return errors.InvalidInput("export path is the primary store file")
	}

	s.mu.RLock()
	urls := s.snapshot()
	s.mu.RUnlock()

	if err := repository.WriteCSVFile(path, urls); err != nil {
		return errors.StorageFailure("export "+path, err)
	}

	s.log.Info("exported mappings", "path", path, "count", len(urls))
	return nil
}

// NextID returns the id the next new URL will receive, collisions aside.
func (s *URLService) NextID() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// Len returns the number of stored mappings.
func (s *URLService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// ============ HELPERS ============

func (s *URLService) snapshot() []model.URL {
	urls := make([]model.URL, 0, len(s.order)+1)
	for _, code := range s.order {
		urls = append(urls, s.byCode[code])
	}
	return urls
}

func (s *URLService) persist(urls []model.URL) error {
	if err := s.repo.Save(urls); err != nil {
		s.log.Error("failed to persist mappings", "backend", s.repo.Name(), "error", err.Error())
		if !errors.IsStorageFailure(err) {
			err = errors.StorageFailure("save", err)
		}
		return err
	}
	return nil
}

func (s *URLService) isPrimaryFile(path string) bool {
	fb, ok := s.repo.(interface{ Path() string })
	if !ok {
		return false
	}
	a, errA := filepath.Abs(path)
	b, errB := filepath.Abs(fb.Path())
	if errA != nil || errB != nil {
		return filepath.Clean(path) == filepath.Clean(fb.Path())
	}
	return a == b
}
