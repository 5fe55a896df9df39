package api

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alvinbaena/pwd-advisor/pkg/advisor"
	"github.com/alvinbaena/pwd-advisor/pkg/charset"
	"github.com/alvinbaena/pwd-advisor/pkg/corpus"
	"github.com/alvinbaena/pwd-advisor/pkg/gcs"
	"github.com/alvinbaena/pwd-advisor/pkg/strength"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, leaked strength.Corpus) *gin.Engine {
	t.Helper()
	return NewRouter(advisor.New(advisor.Options{
		Charset: charset.DefaultConfig(),
		Corpus:  leaked,
		Source:  rand.New(rand.NewSource(7)),
	}))
}

func gcsCorpus(t *testing.T, words ...string) *corpus.GCS {
	t.Helper()
	var out bytes.Buffer
	require.NoError(t, gcs.NewBuilder(strings.NewReader(strings.Join(words, "\n")), &out, gcs.Plain, 1<<20, 2).Process())

	name := filepath.Join(t.TempDir(), "leaked.gcs")
	require.NoError(t, os.WriteFile(name, out.Bytes(), 0o644))

	g, err := corpus.OpenGCS(name)
	require.NoError(t, err)
	return g
}

func post(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerate(t *testing.T) {
	router := newRouter(t, corpus.NewSet("password"))

	w := post(t, router, "/v1/generate", gin.H{
		"length": 16, "count": 3, "upper": true, "lower": true, "digits": true,
		"excludeAmbiguous": true, "base64": true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Passwords, 3)

	for _, p := range resp.Passwords {
		assert.Len(t, p.Password, 16)
		assert.NotContains(t, p.Password, "0")
		assert.NotEmpty(t, p.Base64)
		assert.NotNil(t, p.CrackTime.Seconds)
		assert.NotEmpty(t, p.CrackTime.Display)
		require.NotNil(t, p.Strength)
		assert.Equal(t, strength.Safe, p.Strength.Level)
	}
}

func TestGenerate_DefaultCount(t *testing.T) {
	router := newRouter(t, nil)

	w := post(t, router, "/v1/generate", gin.H{"length": 8})
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Passwords, 1)
	assert.Nil(t, resp.Passwords[0].Strength)
	assert.Empty(t, resp.Passwords[0].Base64)
	// no classes selected falls back to digits
	assert.Regexp(t, `^\d{8}$`, resp.Passwords[0].Password)
}

func TestGenerate_Invalid(t *testing.T) {
	router := newRouter(t, nil)

	cases := []gin.H{
		{},
		{"length": 7},
		{"length": 33},
		{"length": 12, "count": 6},
		{"length": 12, "count": -1},
	}

	for _, body := range cases {
		w := post(t, router, "/v1/generate", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestCheckPassword(t *testing.T) {
	router := newRouter(t, corpus.NewSet("password"))

	w := post(t, router, "/v1/check/password", gin.H{"password": "password"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Leaked)
	assert.Equal(t, strength.Danger, resp.Strength.Level)
	assert.Equal(t, "leaked", resp.Strength.Display)

	w = post(t, router, "/v1/check/password", gin.H{"password": "correct-horse-battery-staple"})
	require.Equal(t, http.StatusOK, w.Code)

	resp = queryResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Leaked)
	assert.Equal(t, strength.Safe, resp.Strength.Level)
	assert.True(t, strings.HasSuffix(resp.Strength.Display, "years or more"))
	assert.NotEmpty(t, resp.CrackTime.Breakdown)

	w = post(t, router, "/v1/check/password", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckPassword_Overflow(t *testing.T) {
	router := newRouter(t, nil)

	w := post(t, router, "/v1/check/password", gin.H{"password": strings.Repeat("aB3$", 50)})
	require.Equal(t, http.StatusOK, w.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.CrackTime.Seconds)
	assert.Equal(t, "∞ years", resp.CrackTime.Display)
	assert.Equal(t, strength.Safe, resp.Strength.Level)
}

func TestCheckHash(t *testing.T) {
	router := newRouter(t, gcsCorpus(t, "password", "123456"))

	cases := []struct {
		hash   string
		status int
		leaked bool
	}{
		{"5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8", http.StatusOK, true},
		{"5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8", http.StatusOK, true},
		{"AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", http.StatusOK, false},
		{"5BAA61E4", http.StatusBadRequest, false},
		{"ZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZZ", http.StatusBadRequest, false},
	}

	for _, tc := range cases {
		w := post(t, router, "/v1/check/hash", gin.H{"hash": tc.hash})
		require.Equal(t, tc.status, w.Code, "hash %s", tc.hash)
		if tc.status != http.StatusOK {
			continue
		}

		var resp hashResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, tc.leaked, resp.Leaked, "hash %s", tc.hash)
	}
}

func TestCheckHash_Unsupported(t *testing.T) {
	router := newRouter(t, corpus.NewSet("password"))

	w := post(t, router, "/v1/check/hash", gin.H{"hash": "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8"})
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestNewRouter_AccessLog(t *testing.T) {
	var buf bytes.Buffer
	prev := gin.DefaultWriter
	gin.DefaultWriter = &buf
	t.Cleanup(func() { gin.DefaultWriter = prev })

	router := newRouter(t, nil)
	gin.DefaultWriter = prev

	post(t, router, "/v1/check/password", gin.H{"password": "abc"})
	post(t, router, "/v1/check/password", gin.H{"password": "abcd"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "/v1/check/password")
	}
}

func TestMetrics(t *testing.T) {
	router := newRouter(t, nil)
	post(t, router, "/v1/check/password", gin.H{"password": "abc"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pwd_advisor_checked_passwords_total")
	assert.Contains(t, w.Body.String(), "pwd_advisor_request_duration_seconds")
}
