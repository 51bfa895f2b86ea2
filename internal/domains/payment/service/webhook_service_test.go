package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	colmodel "researchequals-backend/internal/domains/collection/model"
	collectionservice "researchequals-backend/internal/domains/collection/service"
	modmodel "researchequals-backend/internal/domains/module/model"
	"researchequals-backend/internal/domains/payment/gateway/stripe"
	pubmodel "researchequals-backend/internal/domains/publication/model"
	publicationservice "researchequals-backend/internal/domains/publication/service"
)

// =====================================================
// FAKES
// =====================================================

type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, _ := json.Marshal(value)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) SetNX(_ context.Context, key string, value interface{}, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.data[key]; exists {
		return false, nil
	}
	data, _ := json.Marshal(value)
	c.data[key] = data
	return true, nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }

type stubModuleRepo struct {
	module    *modmodel.Module
	published *modmodel.PublishedModule
}

func (f *stubModuleRepo) GetForPublication(_ context.Context, id int64) (*modmodel.Module, error) {
	if f.module == nil || f.module.ID != id {
		return nil, modmodel.ErrModuleNotFound
	}
	return f.module, nil
}

func (f *stubModuleRepo) MarkPublished(_ context.Context, id int64, publishedAt time.Time, _, url string) (*modmodel.PublishedModule, error) {
	f.published = &modmodel.PublishedModule{
		ID:          id,
		Title:       f.module.Title,
		Suffix:      f.module.Suffix,
		Prefix:      f.module.Prefix,
		PublishedAt: publishedAt,
		URL:         url,
		LicenseURL:  f.module.License.URL,
		TypeName:    f.module.Type.Name,
	}
	return f.published, nil
}

func (f *stubModuleRepo) GetPublished(_ context.Context, id int64) (*modmodel.PublishedModule, error) {
	if f.published == nil {
		return nil, modmodel.ErrModuleNotFound
	}
	return f.published, nil
}

func (f *stubModuleRepo) GetBySuffix(context.Context, string) (*modmodel.Module, error) {
	return nil, modmodel.ErrModuleNotFound
}

func (f *stubModuleRepo) ListPublishedSince(context.Context, time.Time, int) ([]modmodel.PublishedModule, error) {
	return nil, nil
}

func (f *stubModuleRepo) GetLicenseByPriceID(context.Context, string) (*modmodel.License, error) {
	return nil, modmodel.ErrModuleNotFound
}

type stubEncoder struct{}

func (stubEncoder) Encode(*pubmodel.ModuleMetadata) ([]byte, error) {
	return []byte("<doi_batch/>"), nil
}

type stubSubmitter struct {
	calls int
	err   error
}

func (s *stubSubmitter) Submit(context.Context, []byte, string) error {
	s.calls++
	return s.err
}

type stubIndexer struct {
	calls int
}

func (s *stubIndexer) Upsert(context.Context, *modmodel.PublishedModule) error {
	s.calls++
	return nil
}

type stubEnqueuer struct{}

func (stubEnqueuer) EnqueueIndexResync(int64) error { return nil }

type stubCollectionRepo struct {
	created  []*colmodel.Collection
	upgrades map[int64]int64
}

func (f *stubCollectionRepo) Create(_ context.Context, c *colmodel.Collection, _ int64) error {
	c.ID = int64(len(f.created) + 1)
	f.created = append(f.created, c)
	return nil
}

func (f *stubCollectionRepo) UpgradeTier(_ context.Context, collectionID, typeID int64) error {
	if f.upgrades == nil {
		f.upgrades = map[int64]int64{}
	}
	f.upgrades[collectionID] = typeID
	return nil
}

// =====================================================
// FIXTURE
// =====================================================

type webhookFixture struct {
	svc            *WebhookService
	cache          *memoryCache
	moduleRepo     *stubModuleRepo
	submitter      *stubSubmitter
	indexer        *stubIndexer
	collectionRepo *stubCollectionRepo
}

func newWebhookFixture() *webhookFixture {
	main := "main.pdf"
	orcid := "0000-0000-0000-0001"
	f := &webhookFixture{
		cache: newMemoryCache(),
		moduleRepo: &stubModuleRepo{
			module: &modmodel.Module{
				ID:          42,
				Title:       "On Computable Numbers",
				Description: "A study of computability.",
				Language:    "en",
				Prefix:      "10.53962",
				Suffix:      "abcd",
				Main:        &main,
				License:     &modmodel.License{URL: "https://creativecommons.org/licenses/by/4.0/"},
				Type:        &modmodel.ModuleType{Name: "Theory"},
				Authors: []modmodel.ModuleAuthor{
					{Workspace: &modmodel.Workspace{FirstName: "Ada", LastName: "Lovelace", ORCID: &orcid}},
				},
			},
		},
		submitter:      &stubSubmitter{},
		indexer:        &stubIndexer{},
		collectionRepo: &stubCollectionRepo{},
	}

	publishSvc := publicationservice.NewPublishService(
		f.moduleRepo,
		publicationservice.NewMetadataAssembler("https://www.researchequals.com", "ResearchEquals"),
		stubEncoder{}, f.submitter, f.indexer, stubEnqueuer{},
		"ResearchEquals", "10.53962",
	)
	collectionSvc := collectionservice.NewCollectionService(f.collectionRepo)
	f.svc = NewWebhookService("whsec_test", f.cache, publishSvc, collectionSvc)
	return f
}

func licenseEvent(eventID string) *stripe.Event {
	return &stripe.Event{
		ID:   eventID,
		Type: stripe.EventPaymentIntentSucceeded,
		Data: stripe.EventData{Object: stripe.EventObject{
			Metadata: stripe.Metadata{
				Product:  stripe.ProductModuleLicense,
				ModuleID: "42",
				Suffix:   "abcd",
			},
		}},
	}
}

// =====================================================
// TESTS
// =====================================================

func TestProcessEventModuleLicense(t *testing.T) {
	f := newWebhookFixture()

	err := f.svc.ProcessEvent(context.Background(), licenseEvent("evt_1"))
	require.NoError(t, err)

	require.NotNil(t, f.moduleRepo.published)
	assert.Equal(t, "https://doi.org/10.53962/abcd", f.moduleRepo.published.URL)
	assert.Equal(t, 1, f.submitter.calls)
	assert.Equal(t, 1, f.indexer.calls)
}

func TestProcessEventDuplicateSuppressed(t *testing.T) {
	f := newWebhookFixture()

	require.NoError(t, f.svc.ProcessEvent(context.Background(), licenseEvent("evt_1")))
	require.NoError(t, f.svc.ProcessEvent(context.Background(), licenseEvent("evt_1")))

	// Second delivery never reached the pipeline.
	assert.Equal(t, 1, f.submitter.calls)
}

func TestProcessEventGuardReleasedOnFailure(t *testing.T) {
	f := newWebhookFixture()
	f.submitter.err = pubmodel.NewSubmissionError("authority unreachable", errors.New("dial timeout"))

	err := f.svc.ProcessEvent(context.Background(), licenseEvent("evt_1"))
	require.Error(t, err)

	// Redelivery can retry: the guard was released.
	f.submitter.err = nil
	require.NoError(t, f.svc.ProcessEvent(context.Background(), licenseEvent("evt_1")))
	assert.Equal(t, 2, f.submitter.calls)
	assert.NotNil(t, f.moduleRepo.published)
}

func TestProcessEventUnknownType(t *testing.T) {
	f := newWebhookFixture()

	err := f.svc.ProcessEvent(context.Background(), &stripe.Event{
		ID:   "evt_2",
		Type: "charge.refunded",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, f.submitter.calls)
	assert.Nil(t, f.moduleRepo.published)
}

func TestProcessEventInvalidMetadata(t *testing.T) {
	f := newWebhookFixture()

	event := licenseEvent("evt_3")
	event.Data.Object.Metadata.ModuleID = ""

	// Bad metadata is dropped, not retried: redelivery carries the same payload.
	err := f.svc.ProcessEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 0, f.submitter.calls)
}

func TestProcessEventCollectionType(t *testing.T) {
	f := newWebhookFixture()

	err := f.svc.ProcessEvent(context.Background(), &stripe.Event{
		ID:   "evt_4",
		Type: stripe.EventPaymentIntentSucceeded,
		Data: stripe.EventData{Object: stripe.EventObject{
			Metadata: stripe.Metadata{
				Product:      stripe.ProductCollectionType,
				Suffix:       "col1",
				CollectionID: "3",
				WorkspaceID:  "7",
			},
		}},
	})
	require.NoError(t, err)

	require.Len(t, f.collectionRepo.created, 1)
	created := f.collectionRepo.created[0]
	assert.Equal(t, "col1", created.Suffix)
	assert.Equal(t, int64(3), created.CollectionTypeID)
	assert.Equal(t, colmodel.DefaultIcon, created.Icon)
}

func TestProcessEventCollectionUpgrade(t *testing.T) {
	f := newWebhookFixture()

	err := f.svc.ProcessEvent(context.Background(), &stripe.Event{
		ID:   "evt_5",
		Type: stripe.EventPaymentIntentSucceeded,
		Data: stripe.EventData{Object: stripe.EventObject{
			Metadata: stripe.Metadata{
				Product:      stripe.ProductCollectionUpgrade,
				CollectionID: "3",
				ID:           "5",
			},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), f.collectionRepo.upgrades[3])
}

func TestVerifyAndParse(t *testing.T) {
	f := newWebhookFixture()
	payload := []byte(fmt.Sprintf(`{"id":"evt_6","type":%q}`, stripe.EventPaymentIntentSucceeded))

	t.Run("rejects a bad signature", func(t *testing.T) {
		_, err := f.svc.VerifyAndParse(payload, "t=1,v1=deadbeef")
		assert.Error(t, err)
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		_, err := f.svc.VerifyAndParse(payload, "")
		assert.Error(t, err)
	})
}
