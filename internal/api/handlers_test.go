package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/So-lol/ace-website-sub001/internal/common"
	"github.com/So-lol/ace-website-sub001/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"idToken":"abc"}`, true},
		{"empty", ``, false},
		{"malformed", `{"idToken":`, false},
		{"wrong type", `{"idToken":5}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst struct {
				IDToken string `json:"idToken"`
			}
			assert.Equal(t, tt.ok, decodeJSON(rec, req, &dst))
			if tt.ok {
				assert.Equal(t, "abc", dst.IDToken)
				return
			}

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var res common.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.False(t, res.Success)
			assert.Equal(t, constants.MsgInvalidBody, res.Error)
		})
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&bad=x&neg=-3", nil)
	assert.Equal(t, 25, queryInt(req, "limit", 100))
	assert.Equal(t, 100, queryInt(req, "bad", 100))
	assert.Equal(t, 100, queryInt(req, "neg", 100))
	assert.Equal(t, 100, queryInt(req, "absent", 100))
}

func TestSplitIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitIDs([]string{"a, b", " ", "c"}))
	assert.Nil(t, splitIDs(nil))
}
