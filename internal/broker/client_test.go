package broker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientPostTaskSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tasks", r.URL.Path)
		var task Task
		require.NoError(t, json.NewDecoder(r.Body).Decode(&task))
		assert.Equal(t, "ApiKey secret", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "secret")
	task := BuildTask([]string{"berlin"}, TaskConfig{FromAddress: "prism.broker.example.org"})
	err := client.PostTask(context.Background(), task)
	assert.NoError(t, err)
}

func TestHTTPClientPostTaskNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("broker overloaded"))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	err := client.PostTask(context.Background(), Task{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker overloaded")
}

func TestHTTPClientHealthOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	assert.NoError(t, client.Health(context.Background()))
}

func TestHTTPClientStreamResultsParsesFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher, _ := w.(http.Flusher)
		io := `data: {"from":"focus.berlin.broker.example.org","status":"Succeeded","body":"eyJmb28iOiJiYXIifQ=="}

`
		w.Write([]byte(io))
		if flusher != nil {
			flusher.Flush()
		}
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, "")
	results, err := client.StreamResults(context.Background(), "task-1", 1)
	require.NoError(t, err)

	var got []TaskResult
	for r := range results {
		got = append(got, r)
	}
	require.Len(t, got, 1)
	assert.Equal(t, "focus.berlin.broker.example.org", got[0].From)
	assert.Equal(t, StatusSucceeded, got[0].Status)
	assert.True(t, strings.HasPrefix(got[0].Body, "eyJ"))
}
