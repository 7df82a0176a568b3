package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/echocat/slf4g"

	"github.com/blaubaer/cw-keyer/pkg/common"
	"github.com/blaubaer/cw-keyer/pkg/credentials"
	"github.com/blaubaer/cw-keyer/pkg/onair"
)

const DefaultServer = "http://homeassistant.local:8123/"

type credentialsReason uint8

const (
	credentialsReasonMissing credentialsReason = iota
	credentialsReasonInvalidServer
	credentialsReasonInvalidToken
)

// HomeAssistant signals on air by switching an input_boolean entity of a
// Home Assistant instance. The entity is created if it does not exist.
type HomeAssistant struct {
	conf         *Configuration
	saveConfFunc func() error
	mutex        sync.RWMutex

	credentials credentials.Credentials
	lastState   atomic.Pointer[snapshot]

	client             http.Client
	requestCredentials func(credentialsReason) (credentials.Credentials, error)
	now                func() time.Time
}

func (this *HomeAssistant) Initialize(conf *Configuration, saveConfFunc func() error) error {
	this.conf = conf
	this.saveConfFunc = saveConfFunc
	if this.requestCredentials == nil {
		this.requestCredentials = this.requestCredentialsFromTerminal
	}
	if this.now == nil {
		this.now = time.Now
	}

	cred, err := this.loadCredentials()
	if err != nil {
		return err
	}
	if cred.IsHomeAssistantZero() {
		if cred, err = this.requestCredentials(credentialsReasonMissing); err != nil {
			return err
		}
	}
	this.credentials = cred

	return this.Update()
}

// Update verifies that Home Assistant is reachable with the current
// credentials.
func (this *HomeAssistant) Update() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	rsp, err := this.do(http.MethodGet, "/api/", nil)
	if err != nil {
		return err
	}
	_ = rsp.Body.Close()
	if rsp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code of Home Assistant: %d - %s", rsp.StatusCode, rsp.Status)
	}
	return nil
}

func (this *HomeAssistant) Ensure(target onair.State) error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	logger := log.With("entityId", this.conf.EntityId)

	if this.lastState.Load().isValidFor(target, this.conf.DeadZoneInterval, this.now()) {
		logger.Debug("Entity is already in requested state (within dead zone); no update needed.")
		return nil
	}

	path := "/api/states/" + this.conf.EntityId
	rsp, err := this.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = rsp.Body.Close()
	}()

	attributes := map[string]any{}
	switch rsp.StatusCode {
	case http.StatusOK:
		var current stateGetResponse
		if err := json.NewDecoder(rsp.Body).Decode(&current); err != nil {
			return fmt.Errorf("cannot decode state of %s: %w", this.conf.EntityId, err)
		}
		if current.is(target) {
			logger.Debug("Entity is already in requested state; no update needed.")
			this.remember(target)
			return nil
		}
		if current.Attributes != nil {
			attributes = current.Attributes
		}
	case http.StatusNotFound:
		logger.Info("Entity does not exist yet; it will be created.")
		attributes["icon"] = entityIcon
		attributes["friendly_name"] = strings.TrimPrefix(this.conf.EntityId, entityDomainPart)
	default:
		return fmt.Errorf("unexpected status code while reading %s: %d - %s", this.conf.EntityId, rsp.StatusCode, rsp.Status)
	}

	attributes["editable"] = false
	body, err := json.Marshal(statePostRequest{
		State:      target,
		Attributes: attributes,
	})
	if err != nil {
		return err
	}

	pRsp, err := this.do(http.MethodPost, path, body)
	if err != nil {
		return err
	}
	_ = pRsp.Body.Close()
	if pRsp.StatusCode != http.StatusOK && pRsp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status code while writing %s: %d - %s", this.conf.EntityId, pRsp.StatusCode, pRsp.Status)
	}

	logger.With("state", target).
		Debug("Entity updated.")
	this.remember(target)
	return nil
}

func (this *HomeAssistant) remember(state onair.State) {
	this.lastState.Store(&snapshot{
		timestamp: this.now(),
		state:     state,
	})
}

func (this *HomeAssistant) Dispose() error {
	this.mutex.Lock()
	defer this.mutex.Unlock()

	this.lastState.Store(nil)
	this.saveConfFunc = nil
	return nil
}

func (this *HomeAssistant) GetType() onair.Type {
	return onair.TypeHomeAssistant
}

// do sends the request; on 401 or 403 new credentials are requested and the
// request is repeated.
func (this *HomeAssistant) do(method, path string, body []byte) (*http.Response, error) {
	for {
		rsp, err := this.send(this.credentials, method, path, body)
		if err != nil {
			return nil, err
		}
		switch rsp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			_ = rsp.Body.Close()
			cred, err := this.requestCredentials(credentialsReasonInvalidToken)
			if err != nil {
				return nil, err
			}
			this.credentials = cred
		default:
			return rsp, nil
		}
	}
}

func (this *HomeAssistant) send(cred credentials.Credentials, method, path string, body []byte) (*http.Response, error) {
	timeout := this.conf.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancelFunc := context.WithTimeout(context.Background(), timeout)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(cred.HomeAssistantServer, "/")+path, reader)
	if err != nil {
		cancelFunc()
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+cred.HomeAssistantToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rsp, err := this.client.Do(req)
	if err != nil {
		cancelFunc()
		return nil, fmt.Errorf("cannot access %v: %w", req.URL, err)
	}
	rsp.Body = &cancelOnClose{rsp.Body, cancelFunc}
	return rsp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (this *cancelOnClose) Close() error {
	defer this.cancel()
	return this.ReadCloser.Close()
}

func (this *HomeAssistant) loadCredentials() (credentials.Credentials, error) {
	var v credentials.Credentials
	if _, err := v.ReadFromStore(); err != nil {
		return credentials.Credentials{}, err
	}

	if v.HomeAssistantServer == "" {
		v.HomeAssistantServer = this.conf.Server
	}
	if v.HomeAssistantToken == "" {
		v.HomeAssistantToken = this.conf.Token
	}
	return v, nil
}

func (this *HomeAssistant) storeCredentials(cred credentials.Credentials) error {
	var existing credentials.Credentials
	if _, err := existing.ReadFromStore(); err != nil {
		log.WithError(err).
			Debug("Cannot read existing credentials; they will be replaced.")
	}
	existing.Merge(credentials.Credentials{
		HomeAssistantServer: cred.HomeAssistantServer,
		HomeAssistantToken:  cred.HomeAssistantToken,
	})

	supported, err := existing.WriteToStore()
	if err != nil {
		return err
	}
	if supported {
		return nil
	}

	this.conf.Server = cred.HomeAssistantServer
	this.conf.Token = cred.HomeAssistantToken
	if this.saveConfFunc == nil {
		return nil
	}
	return this.saveConfFunc()
}

// check reports whether the server answers and whether it accepts the
// token.
func (this *HomeAssistant) check(cred credentials.Credentials) (serverOk, tokenOk bool, err error) {
	rsp, err := this.send(cred, http.MethodGet, "/api/", nil)
	if err != nil {
		return false, false, err
	}
	_ = rsp.Body.Close()

	switch rsp.StatusCode {
	case http.StatusOK:
		return true, true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return true, false, nil
	default:
		return false, false, nil
	}
}

func (this *HomeAssistant) requestCredentialsFromTerminal(reason credentialsReason) (credentials.Credentials, error) {
	switch reason {
	case credentialsReasonInvalidServer:
		log.With("server", this.credentials.HomeAssistantServer).
			Error("Home Assistant server URL is invalid.")
	case credentialsReasonInvalidToken:
		log.With("server", this.credentials.HomeAssistantServer).
			Error("Home Assistant rejected the access token.")
	default:
		log.Info("Server URL and long-lived access token are required to access Home Assistant.")
	}

	for {
		var cred credentials.Credentials
		if err := common.RequestStringContentIfRequiredFromTerminal(&cred.HomeAssistantServer, fmt.Sprintf("Server URL (empty = %s)", DefaultServer), true, false); err != nil {
			return credentials.Credentials{}, fmt.Errorf("cannot request server url: %w", err)
		}
		if cred.HomeAssistantServer == "" {
			cred.HomeAssistantServer = DefaultServer
		}
		if err := common.RequestStringContentIfRequiredFromTerminal(&cred.HomeAssistantToken, "Token", false, true); err != nil {
			return credentials.Credentials{}, fmt.Errorf("cannot request token: %w", err)
		}

		serverOk, tokenOk, err := this.check(cred)
		if err != nil {
			log.WithError(err).
				With("server", cred.HomeAssistantServer).
				Error("Cannot reach Home Assistant.")
			continue
		}
		if serverOk && tokenOk {
			if err := this.storeCredentials(cred); err != nil {
				log.WithError(err).
					Warn("Cannot store Home Assistant credentials; they will be requested again next time.")
			}
			return cred, nil
		}
		if !serverOk {
			log.With("server", cred.HomeAssistantServer).
				Error("Home Assistant server URL is invalid.")
		} else {
			log.With("server", cred.HomeAssistantServer).
				Error("Home Assistant rejected the access token.")
		}
	}
}
