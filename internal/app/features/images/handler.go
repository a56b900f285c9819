// internal/app/features/images/handler.go
//
// Package images converts a remote image URL into a base64 data URL so
// browser clients can embed external images without tripping CORS.
package images

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/flocklabs/flockhub/internal/app/system/httpjson"
	"github.com/flocklabs/flockhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// maxImageBytes caps the fetched image size.
const maxImageBytes = 10 << 20

type Handler struct {
	Client *http.Client
	Log    *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Client: &http.Client{}, Log: logger}
}

type convertRequest struct {
	ImageURL string `json:"image_url"`
}

type convertResponse struct {
	Base64DataURL string `json:"base64_data_url"`
}

// HandleConvert handles POST /images/convert-image: fetches the image at
// the given URL and returns it as a data URL. A fetch timeout maps to
// 408; any other fetch failure or a non-200 upstream maps to 400.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var in convertRequest
	if err := httpjson.Decode(r, &in); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, err := url.Parse(in.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		httpjson.Error(w, http.StatusBadRequest, "image_url must be an http or https URL")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.ImageURL, nil)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "failed to fetch image")
		return
	}
	resp, err := h.Client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			h.Log.Error("image fetch timed out", zap.String("url", in.ImageURL))
			httpjson.Error(w, http.StatusRequestTimeout, "timeout fetching image")
			return
		}
		h.Log.Error("image fetch failed", zap.String("url", in.ImageURL), zap.Error(err))
		httpjson.Error(w, http.StatusBadRequest, "failed to fetch image")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		httpjson.Error(w, http.StatusBadRequest, "failed to fetch image: HTTP "+strconv.Itoa(resp.StatusCode))
		return
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		h.Log.Error("image read failed", zap.String("url", in.ImageURL), zap.Error(err))
		httpjson.Error(w, http.StatusBadRequest, "failed to fetch image")
		return
	}
	if len(data) > maxImageBytes {
		httpjson.Error(w, http.StatusBadRequest, "image too large")
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	httpjson.Write(w, http.StatusOK, convertResponse{
		Base64DataURL: "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
	})
}
