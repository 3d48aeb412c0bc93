package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ZanzyTHEbar/glucoscreen/internal/errors"
	"github.com/ZanzyTHEbar/glucoscreen/internal/extract"
)

const report = "Pregnancies: 1\nGlucose: 140\nBlood Pressure: 70\nSkin Thickness: 20\nInsulin: 0\nBMI: 30.5\nDiabetes Pedigree Function: 0.4\nAge: 44\n"

func TestCache_Extract(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Close()

	extractor := extract.New()

	first, hit, err := c.Extract([]byte(report), extractor)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.True(t, first.Complete())

	second, hit, err := c.Extract([]byte(report), extractor)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, 1, c.Size())
}

func TestCache_ParseErrorsNotCached(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Close()

	_, _, err := c.Extract(nil, extract.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsCategory(err, apperrors.CategoryDocumentParse))
	assert.Equal(t, 0, c.Size())
}

func TestCache_ReturnsCopies(t *testing.T) {
	c := NewCache(time.Minute)
	defer c.Close()

	doc, err := extract.ExtractDocument([]byte("Glucose: 100"))
	require.NoError(t, err)

	key := Key([]byte("Glucose: 100"))
	c.Set(key, doc)

	got, ok := c.Get(key)
	require.True(t, ok)
	*got.Values["Glucose"] = 999
	got.Missing[0] = "changed"

	again, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, 100.0, *again.Values["Glucose"])
	assert.Equal(t, "Pregnancies", again.Missing[0])
}

func TestCache_Expiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	defer c.Close()

	c.Set("k", &extract.Document{Kind: "text"})
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	stats := c.Stats()
	assert.Equal(t, 1, stats["expired_items"])

	_, ok = c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestCache_EvictExpired(t *testing.T) {
	c := NewCache(time.Hour)
	defer c.Close()

	c.Set("fresh", &extract.Document{})
	c.mu.Lock()
	c.items["stale"] = &CacheItem{Document: &extract.Document{}, ExpiresAt: time.Now().Add(-time.Second)}
	c.mu.Unlock()

	assert.Equal(t, 1, c.evictExpired())
	assert.Equal(t, 1, c.Size())

	c.Clear()
	assert.Equal(t, 0, c.Size())
	c.Close()
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key([]byte("a")), Key([]byte("a")))
	assert.NotEqual(t, Key([]byte("a")), Key([]byte("b")))
	assert.Len(t, Key(nil), 64)
}
