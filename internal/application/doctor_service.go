package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/doctor-directory/internal/domain/entity"
	"github.com/oksasatya/doctor-directory/internal/domain/repository"
	"github.com/oksasatya/doctor-directory/pkg/helpers"
	"github.com/oksasatya/doctor-directory/pkg/validation"
)

const (
	addFailedMessage  = "Failed to add doctor"
	listFailedMessage = "Failed to fetch doctors"
)

var (
	ErrSearchDisabled      = errors.New("doctor search not configured")
	ErrImageUploadDisabled = errors.New("image upload not configured")
	ErrNotAnImage          = errors.New("uploaded file is not an image")
)

// ListCache holds list responses keyed by canonical query.
type ListCache interface {
	Lookup(ctx context.Context, query string) (body []byte, generation int64, hit bool, err error)
	Store(ctx context.Context, generation int64, query string, body []byte) error
	Invalidate(ctx context.Context) error
}

type SubmitLocker interface {
	Acquire(ctx context.Context, token string) (bool, error)
	Release(ctx context.Context, token string) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type DoctorIndex interface {
	IndexDoctor(ctx context.Context, id string, d entity.Doctor) error
	Search(ctx context.Context, q string, size int) ([]map[string]any, error)
}

// DoctorService owns the add-doctor submission flow and the cached list flow.
// Every optional collaborator may be nil.
type DoctorService struct {
	Gateway   repository.DoctorGateway
	Cache     ListCache
	Locks     SubmitLocker
	Events    EventPublisher
	Index     DoctorIndex
	GCS       *storage.Client
	GCSBucket string
	Logger    *logrus.Logger
}

func NewDoctorService(gw repository.DoctorGateway, cache ListCache, locks SubmitLocker, logger *logrus.Logger) *DoctorService {
	return &DoctorService{Gateway: gw, Cache: cache, Locks: locks, Logger: logger}
}

// AddDoctorInput is the add-doctor form. Tags are checked before any backend call.
type AddDoctorInput struct {
	Name        string  `json:"name" form:"name" binding:"required"`
	Specialty   string  `json:"specialty" form:"specialty" binding:"required,specialty"`
	Gender      string  `json:"gender" form:"gender" binding:"required,gender"`
	City        string  `json:"city" form:"city" binding:"required,city"`
	Experience  int     `json:"experience" form:"experience" binding:"gte=0"`
	Rating      float64 `json:"rating" form:"rating" binding:"rating"`
	Image       string  `json:"image" form:"image" binding:"required,url"`
	Hospital    string  `json:"hospital" form:"hospital"`
	Fee         int     `json:"fee" form:"fee" binding:"gte=0"`
	ReviewCount int     `json:"reviewCount" form:"reviewCount" binding:"gte=0"`
}

// DefaultAddDoctorInput is the blank form.
func DefaultAddDoctorInput() AddDoctorInput {
	return AddDoctorInput{Specialty: "General Physician", Gender: entity.GenderMale}
}

func (in AddDoctorInput) Doctor() entity.Doctor {
	return entity.Doctor{
		Name:        in.Name,
		Specialty:   in.Specialty,
		Gender:      in.Gender,
		City:        in.City,
		Experience:  in.Experience,
		Rating:      in.Rating,
		Image:       in.Image,
		Hospital:    in.Hospital,
		Fee:         in.Fee,
		ReviewCount: in.ReviewCount,
	}
}

// Submit validates in and sends exactly one add request to the backend.
// token, when set, makes a repeated submission of the same form fail with
// ErrDuplicateSubmission instead of creating a second record.
func (s *DoctorService) Submit(ctx context.Context, in AddDoctorInput, token string) (json.RawMessage, error) {
	if err := validation.Struct(in); err != nil {
		return nil, &ValidationError{Fields: validation.ToDetails(err)}
	}
	doc := in.Doctor()
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	if err := s.lock(ctx, token); err != nil {
		return nil, err
	}
	relay, err := s.Gateway.AddDoctor(ctx, body)
	if err != nil {
		s.unlock(ctx, token)
		helpers.CountMetric("add_upstream_failures")
		return nil, upstreamError(err, relay, addFailedMessage)
	}
	if !relay.OK() {
		s.unlock(ctx, token)
		helpers.CountMetric("add_upstream_failures")
		return nil, statusError(relay, addFailedMessage)
	}

	doc.ID = entity.ExtractID(relay.Body)
	s.afterAdd(ctx, doc)
	return relay.Body, nil
}

// RelayAdd forwards an already-encoded add request without validating it.
// A non-2xx backend answer is returned as a relay, not an error.
func (s *DoctorService) RelayAdd(ctx context.Context, body []byte, idempotencyKey string) (*repository.Relay, error) {
	if err := s.lock(ctx, idempotencyKey); err != nil {
		return nil, err
	}
	relay, err := s.Gateway.AddDoctor(ctx, body)
	if err != nil {
		s.unlock(ctx, idempotencyKey)
		helpers.CountMetric("add_upstream_failures")
		return relay, upstreamError(err, relay, addFailedMessage)
	}
	if !relay.OK() {
		s.unlock(ctx, idempotencyKey)
		return relay, nil
	}

	var doc entity.Doctor
	if err := json.Unmarshal(body, &doc); err != nil {
		s.warn(err, "added doctor body not decodable", nil)
	}
	if doc.ID == "" {
		doc.ID = entity.ExtractID(relay.Body)
	}
	s.afterAdd(ctx, doc)
	return relay, nil
}

// RelayList forwards rawQuery unchanged. Lists relayed this way bypass the cache.
func (s *DoctorService) RelayList(ctx context.Context, rawQuery string) (*repository.Relay, error) {
	relay, err := s.Gateway.ListDoctors(ctx, rawQuery)
	if err != nil {
		helpers.CountMetric("list_upstream_failures")
		return relay, upstreamError(err, relay, listFailedMessage)
	}
	return relay, nil
}

// ListResult is one list fetch, decoded for rendering.
type ListResult struct {
	Query   url.Values
	Raw     json.RawMessage
	Doctors []entity.Doctor
	Cached  bool
}

// ForwardQuery returns the backend query for a listing page: every incoming
// parameter unchanged, plus the route slug as specialty when none was given.
func ForwardQuery(slug string, in url.Values) url.Values {
	q := make(url.Values, len(in)+1)
	for k, v := range in {
		q[k] = append([]string(nil), v...)
	}
	if slug != "" && q.Get("specialty") == "" {
		q.Set("specialty", slug)
	}
	return q
}

// List returns the doctors for a listing page, from cache when possible.
func (s *DoctorService) List(ctx context.Context, slug string, query url.Values) (*ListResult, error) {
	q := ForwardQuery(slug, query)
	key := q.Encode()

	var gen int64
	cacheable := false
	if s.Cache != nil {
		body, g, hit, err := s.Cache.Lookup(ctx, key)
		switch {
		case err != nil:
			s.warn(err, "list cache lookup failed", logrus.Fields{"query": key})
		case hit:
			helpers.CountMetric("list_cache_hits")
			return s.decodeList(q, body, true), nil
		default:
			gen, cacheable = g, true
			helpers.CountMetric("list_cache_misses")
		}
	}

	relay, err := s.Gateway.ListDoctors(ctx, key)
	if err != nil {
		helpers.CountMetric("list_upstream_failures")
		return nil, upstreamError(err, relay, listFailedMessage)
	}
	if !relay.OK() {
		helpers.CountMetric("list_upstream_failures")
		return nil, statusError(relay, listFailedMessage)
	}
	if cacheable {
		if err := s.Cache.Store(ctx, gen, key, relay.Body); err != nil {
			s.warn(err, "list cache store failed", logrus.Fields{"query": key})
		}
	}
	return s.decodeList(q, relay.Body, false), nil
}

func (s *DoctorService) decodeList(q url.Values, body []byte, cached bool) *ListResult {
	docs, err := entity.DecodeDoctors(body)
	if err != nil {
		s.warn(err, "list payload has no doctors", logrus.Fields{"query": q.Encode()})
	}
	return &ListResult{Query: q, Raw: body, Doctors: docs, Cached: cached}
}

// Search queries the local doctor index.
func (s *DoctorService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.Index == nil {
		return nil, ErrSearchDisabled
	}
	return s.Index.Search(ctx, q, size)
}

// UploadImage stores a doctor photo in GCS and returns its public URL.
func (s *DoctorService) UploadImage(ctx context.Context, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", ErrImageUploadDisabled
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("doctors", uuid.NewString()+ext))
	return helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
}

func (s *DoctorService) afterAdd(ctx context.Context, doc entity.Doctor) {
	helpers.CountMetric("doctors_added")
	if s.Cache != nil {
		if err := s.Cache.Invalidate(ctx); err != nil {
			helpers.LogError(s.Logger, "list cache invalidation failed", err, nil)
		}
	}

	ev := entity.DoctorAddedEvent{
		EventID:    uuid.NewString(),
		Type:       entity.EventDoctorAdded,
		Doctor:     doc,
		OccurredAt: time.Now().UTC(),
	}
	if s.Events != nil {
		err := s.Events.PublishJSON(ctx, ev)
		if err == nil {
			return
		}
		s.warn(err, "publish doctor.added failed, indexing inline", logrus.Fields{"event_id": ev.EventID})
	}
	if s.Index != nil {
		id := doc.ID
		if id == "" {
			id = ev.EventID
		}
		if err := s.Index.IndexDoctor(ctx, id, doc); err != nil {
			helpers.CountMetric("inline_index_failures")
			s.warn(err, "inline doctor index failed", logrus.Fields{"doctor_id": id})
		}
	}
}

func (s *DoctorService) lock(ctx context.Context, token string) error {
	if token == "" || s.Locks == nil {
		return nil
	}
	ok, err := s.Locks.Acquire(ctx, token)
	if err != nil {
		// fail-open when redis is unavailable
		s.warn(err, "submit lock unavailable", nil)
		return nil
	}
	if !ok {
		helpers.CountMetric("duplicate_submissions")
		return ErrDuplicateSubmission
	}
	return nil
}

func (s *DoctorService) unlock(ctx context.Context, token string) {
	if token == "" || s.Locks == nil {
		return
	}
	if err := s.Locks.Release(ctx, token); err != nil {
		s.warn(err, "submit lock release failed", nil)
	}
}

func (s *DoctorService) warn(err error, msg string, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	s.Logger.WithError(err).WithFields(fields).Warn(msg)
}
