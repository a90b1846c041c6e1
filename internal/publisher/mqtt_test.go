package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/epichart/internal/config"
	"github.com/jgoulah/epichart/pkg/models"
)

func report() models.Report {
	r := models.NewReport("3f6c", "shanghai", 62, models.Daily{
		Date:      time.Date(2022, 4, 30, 0, 0, 0, 0, time.UTC),
		Confirmed: 1249, Asymptomatic: 8932, Severe: 3, Death: 1,
	})
	r.CreatedAt = time.Date(2022, 5, 1, 8, 0, 0, 0, time.UTC)
	return r
}

func TestPayload(t *testing.T) {
	p := NewPayload(report())
	assert.Equal(t, "shanghai", p.City)
	assert.Equal(t, "2022-04-30", p.Date)
	assert.Equal(t, 10181, p.Positive)
	assert.Equal(t, "2022-05-01T08:00:00Z", p.RenderedAt)

	body, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"confirmed_from_risk":0`)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "epichart/shanghai/state", Topic("epichart", "shanghai"))
	assert.Equal(t, "home/covid/beijing/state", Topic("home/covid/", "beijing"))
	assert.Equal(t, "sensor.epichart_hong_kong", EntityID("sensor.epichart", "hong-kong"))
}

func TestNewValidation(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, err := New(config.MQTTConfig{}, config.HAConfig{}, log)
	assert.Error(t, err)

	_, err = New(config.MQTTConfig{}, config.HAConfig{Enabled: true, URL: "http://ha"}, log)
	assert.Error(t, err)

	_, err = New(config.MQTTConfig{Enabled: true}, config.HAConfig{}, log)
	assert.Error(t, err)
}

func TestPublishHomeAssistant(t *testing.T) {
	var got HAState
	var path, auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, auth = r.URL.Path, r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	pub, err := New(config.MQTTConfig{}, config.HAConfig{
		Enabled: true, URL: srv.URL + "/", Token: "secret", EntityID: "sensor.epichart",
	}, log)
	require.NoError(t, err)
	defer pub.Close()

	require.NoError(t, pub.Publish(context.Background(), report()))
	assert.Equal(t, "/api/states/sensor.epichart_shanghai", path)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "10181", got.State)
	assert.Equal(t, 1, got.Attributes.Death)
}

func TestPublishHomeAssistantError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	log, _ := test.NewNullLogger()
	pub, err := New(config.MQTTConfig{}, config.HAConfig{
		Enabled: true, URL: srv.URL, Token: "wrong", EntityID: "sensor.epichart",
	}, log)
	require.NoError(t, err)

	err = pub.Publish(context.Background(), report())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
