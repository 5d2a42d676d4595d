package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/gin-gonic/gin"

	"musicportal/internal/domain"
)

// Envelope is the JSON body every handler writes.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// NewRouter returns a gin engine whose /api/v1 group trusts the
// X-Test-User-ID and X-Test-Role headers in place of a bearer token.
func NewRouter() (*gin.Engine, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	v1.Use(func(c *gin.Context) {
		if raw := c.GetHeader("X-Test-User-ID"); raw != "" {
			id, _ := strconv.ParseInt(raw, 10, 64)
			c.Set("user_id", id)
			c.Set("role", c.GetHeader("X-Test-Role"))
		}
		c.Next()
	})
	return r, v1
}

func DoJSON(r http.Handler, method, path string, body any, actor domain.Actor) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor.UserID > 0 {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(actor.UserID, 10))
		req.Header.Set("X-Test-Role", string(actor.Role))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func DecodeEnvelope(rr *httptest.ResponseRecorder) (Envelope, error) {
	var env Envelope
	err := json.Unmarshal(rr.Body.Bytes(), &env)
	return env, err
}
