package images_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flocklabs/flockhub/internal/app/features/images"
	"github.com/flocklabs/flockhub/internal/testutil"
	"go.uber.org/zap"
)

// 1x1 transparent GIF.
var tinyGIF = []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00\x00\x00\x00\xff\xff\xff!\xf9\x04\x01\x00\x00\x00\x00,\x00\x00\x00\x00\x01\x00\x01\x00\x00\x02\x02D\x01\x00;")

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return images.Routes(images.NewHandler(zap.NewNop()))
}

func TestHandleConvert(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.Write(tinyGIF)
	}))
	defer upstream.Close()

	router := newTestRouter(t)
	body := map[string]any{"image_url": upstream.URL + "/pixel.gif"}
	req := testutil.NewJSONRequest(t, "POST", "/convert-image", body, testutil.TestMemberUser())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Base64DataURL string `json:"base64_data_url"`
	}
	testutil.DecodeJSON(t, rec, &resp)

	want := "data:image/gif;base64," + base64.StdEncoding.EncodeToString(tinyGIF)
	if resp.Base64DataURL != want {
		t.Errorf("data url mismatch:\ngot  %q\nwant %q", resp.Base64DataURL, want)
	}
}

func TestHandleConvert_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer upstream.Close()

	router := newTestRouter(t)
	body := map[string]any{"image_url": upstream.URL + "/missing.png"}
	req := testutil.NewJSONRequest(t, "POST", "/convert-image", body, testutil.TestMemberUser())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestHandleConvert_BadURL(t *testing.T) {
	router := newTestRouter(t)

	for _, u := range []string{"", "ftp://example.com/a.png", "not a url"} {
		body := map[string]any{"image_url": u}
		req := testutil.NewJSONRequest(t, "POST", "/convert-image", body, testutil.TestMemberUser())
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("url %q: got %d, want %d", u, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest("POST", "/convert-image", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status without user: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
