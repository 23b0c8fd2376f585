package services

import (
	"context"
	"testing"

	"github.com/kendall-kelly/canteen-orders/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "chat:555", SessionKey(555))
	assert.Equal(t, "chat:-1001", SessionKey(-1001))
}

func sessionStores(t *testing.T) map[string]SessionStore {
	return map[string]SessionStore{
		"gorm": NewGormSessionStore(testutil.SetupTestDB(t)),
		"mock": NewMockSessionStore(),
	}
}

func TestSessionStoreUnknownKey(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			state, err := store.Load(context.Background(), "chat:404")
			require.NoError(t, err)
			require.NotNil(t, state)
			assert.Nil(t, state.Draft)
			assert.Nil(t, state.Carousel)
			assert.Nil(t, state.Auth)
		})
	}
}

func TestSessionStoreRoundTrip(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := SessionKey(handleAlice)

			d := selectionDraft(t)
			_, _ = d.adjust(3, Increase)
			_, _ = d.commit(3)
			_, err := d.nextPage()
			require.NoError(t, err)

			require.NoError(t, store.Save(ctx, key, &SessionState{Draft: d}))

			loaded, err := store.Load(ctx, key)
			require.NoError(t, err)
			require.NotNil(t, loaded.Draft)
			assert.Equal(t, PhaseItemSelection, loaded.Draft.Phase)
			assert.True(t, d.Amount.Equal(loaded.Draft.Amount))
			assert.Equal(t, d.Pager, loaded.Draft.Pager)

			// the restored draft continues where the original stopped
			want, _ := d.nextPage()
			got, err := loaded.Draft.nextPage()
			require.NoError(t, err)
			require.Len(t, got, len(want))
			assert.Equal(t, want[0].PositionID, got[0].PositionID)
		})
	}
}

func TestSessionStoreOverwriteAndDelete(t *testing.T) {
	for name, store := range sessionStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := SessionKey(handleAlice)

			require.NoError(t, store.Save(ctx, key, &SessionState{Draft: selectionDraft(t)}))

			c, err := NewCarousel(ModeDelete, views(1, 2, 3))
			require.NoError(t, err)
			require.NoError(t, c.StepForward())
			require.NoError(t, store.Save(ctx, key, &SessionState{Carousel: c}))

			loaded, err := store.Load(ctx, key)
			require.NoError(t, err)
			assert.Nil(t, loaded.Draft, "save replaces the whole state")
			require.NotNil(t, loaded.Carousel)
			assert.Equal(t, ModeDelete, loaded.Carousel.Mode)
			assert.Equal(t, uint(2), currentID(t, loaded.Carousel))

			require.NoError(t, store.Delete(ctx, key))
			loaded, err = store.Load(ctx, key)
			require.NoError(t, err)
			assert.Nil(t, loaded.Carousel)
		})
	}
}

func TestMockSessionStoreKeepsJSON(t *testing.T) {
	store := NewMockSessionStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "chat:1", &SessionState{Auth: &AuthState{CustomerID: 7, Handle: 1, CanteenIDs: []uint{3}}}))
	assert.JSONEq(t, `{"auth":{"customer_id":7,"handle":1,"canteen_ids":[3]}}`, store.Raw("chat:1"))
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	_, err := decodeSession("{not json")
	assert.Error(t, err)
}
