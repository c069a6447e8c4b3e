package rest

import (
	"log/slog"
	"net/http"
	"strconv"
)

type assetLoader interface {
	Load(key string) ([]byte, error)
}

// AssetHandler serves synthesized audio to hosts that cannot read the asset
// directory themselves.
type AssetHandler struct {
	assets assetLoader
	log    *slog.Logger
}

// NewAssetHandler creates an AssetHandler.
func NewAssetHandler(assets assetLoader, logger *slog.Logger) *AssetHandler {
	return &AssetHandler{assets: assets, log: logger.With("handler", "assets")}
}

// Get handles GET /assets/{key}. The key is the asset key without extension.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, err := h.assets.Load(r.PathValue("key"))
	if err != nil {
		status := statusFor(err)
		writeJSON(w, status, errorBody(r.Context(), h.log, status, err))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
