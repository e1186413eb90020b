package datastore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutBytesReturnsKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/7", r.URL.Path)
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "hello", string(body))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, "42")
	}))
	defer srv.Close()

	c := New(srv.URL)
	key, err := c.PutBytes(context.Background(), []byte("hello"), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), key)
}

func TestPutBytesExtractsKeyFromSurroundingText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, "Object stored with key: 99\n")
	}))
	defer srv.Close()

	c := New(srv.URL)
	key, err := c.PutBytes(context.Background(), []byte("hello"), 7)
	require.NoError(t, err)
	assert.Equal(t, uint64(99), key)
}

func TestPutBytesNonCreatedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "broken")
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.PutBytes(context.Background(), []byte("x"), 1)
	assert.Error(t, err)
}

func TestGetFileReturnsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/7/42", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "the contents")
	}))
	defer srv.Close()

	c := New(srv.URL)
	data, err := c.GetFile(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, "the contents", string(data))
}

func TestGetFileNonOKIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetFile(context.Background(), 1, 1)
	assert.Error(t, err)
}

func TestSaveTmpAndRemove(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "tmp contents")
	}))
	defer srv.Close()

	c := New(srv.URL)
	path, err := c.SaveTmp(context.Background(), 1, 1, "tmp", "")
	require.NoError(t, err)
	defer RemoveTmp(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tmp contents", string(data))

	require.NoError(t, RemoveTmp(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveTmpMissingFileIsNotError(t *testing.T) {
	assert.NoError(t, RemoveTmp("/tmp/does-not-exist-hsn2-datastore-test"))
}
