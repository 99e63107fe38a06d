package session

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reelrate/model"
)

type memoryStorage struct {
	session model.Session
	saveErr error
}

func (m *memoryStorage) Load() (model.Session, error) { return m.session, nil }
func (m *memoryStorage) Save(s model.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.session = s
	return nil
}
func (m *memoryStorage) Clear() error {
	m.session = model.Session{}
	return nil
}

func TestLoginPersistsAndPublishes(t *testing.T) {
	storage := &memoryStorage{}
	store := NewStore(storage)

	var published []model.Session
	store.Subscribe(func(s model.Session) { published = append(published, s) })

	require.NoError(t, store.Login("tok-1", "user@example.com"))

	assert.True(t, store.Active())
	assert.Equal(t, model.Session{Token: "tok-1", Email: "user@example.com"}, store.Current())
	assert.Equal(t, store.Current(), storage.session)
	require.Len(t, published, 1)
	assert.Equal(t, "user@example.com", published[0].Email)
}

func TestLoginRequiresBothFields(t *testing.T) {
	store := NewStore(&memoryStorage{})

	assert.Error(t, store.Login("", "user@example.com"))
	assert.Error(t, store.Login("tok-1", ""))
	assert.False(t, store.Active())
}

func TestLoginFailedPersistenceKeepsNoSession(t *testing.T) {
	storage := &memoryStorage{saveErr: errors.New("disk full")}
	store := NewStore(storage)

	assert.Error(t, store.Login("tok-1", "user@example.com"))
	assert.False(t, store.Active())
}

func TestLogoutClearsAndPublishesZeroSession(t *testing.T) {
	storage := &memoryStorage{}
	store := NewStore(storage)
	require.NoError(t, store.Login("tok-1", "user@example.com"))

	var published []model.Session
	store.Subscribe(func(s model.Session) { published = append(published, s) })

	require.NoError(t, store.Logout())

	assert.False(t, store.Active())
	assert.False(t, storage.session.Valid())
	require.Len(t, published, 1)
	assert.False(t, published[0].Valid())
}

func TestHydrateRestoresValidSessionOnly(t *testing.T) {
	storage := &memoryStorage{session: model.Session{Token: "tok-1", Email: "user@example.com"}}
	store := NewStore(storage)

	notified := 0
	store.Subscribe(func(model.Session) { notified++ })

	require.NoError(t, store.Hydrate())
	assert.True(t, store.Active())
	assert.Equal(t, 1, notified)

	partial := NewStore(&memoryStorage{session: model.Session{Token: "tok-1"}})
	require.NoError(t, partial.Hydrate())
	assert.False(t, partial.Active())
}
