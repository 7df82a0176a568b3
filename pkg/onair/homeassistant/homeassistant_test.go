package homeassistant

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blaubaer/cw-keyer/pkg/credentials"
	"github.com/blaubaer/cw-keyer/pkg/onair"
)

const entityId = "input_boolean.test_cw_keyer_on_air"

type fakeServer struct {
	*httptest.Server
	token string

	mutex    sync.Mutex
	entities map[string]statePostRequest
	posts    int
	gets     int
}

func newFakeServer(t *testing.T, token string) *fakeServer {
	result := &fakeServer{
		token:    token,
		entities: map[string]statePostRequest{},
	}
	result.Server = httptest.NewServer(http.HandlerFunc(result.serveHTTP))
	t.Cleanup(result.Close)
	return result
}

func (this *fakeServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+this.token {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if r.URL.Path == "/api/" {
		_, _ = w.Write([]byte(`{"message":"API running."}`))
		return
	}

	id := r.URL.Path[len("/api/states/"):]
	switch r.Method {
	case http.MethodGet:
		this.gets++
		v, ok := this.entities[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(stateGetResponse{EntityId: id, State: v.State.String(), Attributes: v.Attributes})
	case http.MethodPost:
		this.posts++
		var v statePostRequest
		if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, existed := this.entities[id]
		this.entities[id] = v
		if existed {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusCreated)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (this *fakeServer) entity() (statePostRequest, int, int) {
	this.mutex.Lock()
	defer this.mutex.Unlock()
	return this.entities[entityId], this.gets, this.posts
}

type clock struct {
	now time.Time
}

func (this *clock) get() time.Time {
	return this.now
}

func newInstance(t *testing.T, server *fakeServer, token string) (*HomeAssistant, *clock) {
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	conf := NewConfiguration()
	conf.EntityId = entityId
	conf.Server = server.URL
	conf.Token = token
	instance := &HomeAssistant{
		credentials: credentials.Credentials{},
		requestCredentials: func(credentialsReason) (credentials.Credentials, error) {
			return credentials.Credentials{}, errors.New("no terminal")
		},
		now: c.get,
	}
	require.NoError(t, instance.Initialize(&conf, nil))
	return instance, c
}

func Test_HomeAssistant_Ensure_createsEntity(t *testing.T) {
	server := newFakeServer(t, "secret")
	instance, _ := newInstance(t, server, "secret")

	require.NoError(t, instance.Ensure(onair.StateOn))

	actual, _, posts := server.entity()
	assert.Equal(t, onair.StateOn, actual.State)
	assert.Equal(t, entityIcon, actual.Attributes["icon"])
	assert.Equal(t, "test_cw_keyer_on_air", actual.Attributes["friendly_name"])
	assert.Equal(t, false, actual.Attributes["editable"])
	assert.Equal(t, 1, posts)
}

func Test_HomeAssistant_Ensure_deadZone(t *testing.T) {
	server := newFakeServer(t, "secret")
	instance, c := newInstance(t, server, "secret")

	require.NoError(t, instance.Ensure(onair.StateOn))
	_, gets, posts := server.entity()

	require.NoError(t, instance.Ensure(onair.StateOn))
	_, gets2, posts2 := server.entity()
	assert.Equal(t, gets, gets2, "within the dead zone nothing should be requested")
	assert.Equal(t, posts, posts2)

	c.now = c.now.Add(2 * time.Minute)
	require.NoError(t, instance.Ensure(onair.StateOn))
	_, gets3, posts3 := server.entity()
	assert.Equal(t, gets+1, gets3)
	assert.Equal(t, posts, posts3, "entity is already on")

	require.NoError(t, instance.Ensure(onair.StateOff))
	actual, _, posts4 := server.entity()
	assert.Equal(t, onair.StateOff, actual.State)
	assert.Equal(t, posts+1, posts4)
	assert.Equal(t, entityIcon, actual.Attributes["icon"], "attributes should be kept")
}

func Test_HomeAssistant_unauthorized(t *testing.T) {
	server := newFakeServer(t, "secret")
	conf := NewConfiguration()
	conf.Server = server.URL
	conf.Token = "wrong"
	instance := &HomeAssistant{
		requestCredentials: func(reason credentialsReason) (credentials.Credentials, error) {
			assert.Equal(t, credentialsReasonInvalidToken, reason)
			return credentials.Credentials{}, errors.New("no terminal")
		},
	}

	assert.EqualError(t, instance.Initialize(&conf, nil), "no terminal")
}

func Test_HomeAssistant_unauthorized_recovers(t *testing.T) {
	server := newFakeServer(t, "secret")
	conf := NewConfiguration()
	conf.EntityId = entityId
	conf.Server = server.URL
	conf.Token = "wrong"
	requested := 0
	instance := &HomeAssistant{
		requestCredentials: func(reason credentialsReason) (credentials.Credentials, error) {
			requested++
			return credentials.Credentials{HomeAssistantServer: server.URL, HomeAssistantToken: "secret"}, nil
		},
	}

	require.NoError(t, instance.Initialize(&conf, nil))
	require.NoError(t, instance.Ensure(onair.StateOn))
	assert.Equal(t, 1, requested)
	assert.Equal(t, onair.TypeHomeAssistant, instance.GetType())
}

func Test_normalizeEntityIdPart(t *testing.T) {
	assert.Equal(t, "shack_pc_01", normalizeEntityIdPart(" Shack-PC.01 "))
}

func Test_stateGetResponse_is(t *testing.T) {
	assert.True(t, stateGetResponse{State: "on"}.is(onair.StateOn))
	assert.False(t, stateGetResponse{State: "off"}.is(onair.StateOn))
	assert.False(t, stateGetResponse{State: "unavailable"}.is(onair.StateOff))
}

func Test_snapshot_isValidFor(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s := &snapshot{timestamp: now, state: onair.StateOn}

	assert.True(t, s.isValidFor(onair.StateOn, time.Minute, now.Add(time.Second)))
	assert.False(t, s.isValidFor(onair.StateOff, time.Minute, now.Add(time.Second)))
	assert.False(t, s.isValidFor(onair.StateOn, time.Minute, now.Add(time.Minute)))
	assert.False(t, (*snapshot)(nil).isValidFor(onair.StateOn, time.Minute, now))
}
