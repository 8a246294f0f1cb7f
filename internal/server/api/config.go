package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ayusman/fingercursor/internal/config"
	"github.com/ayusman/fingercursor/internal/store"
)

const maxConfigBody = 1 << 20

// ConfigHandler serves GET and PUT /api/config. Saved settings take effect
// on the next tracked frame.
type ConfigHandler struct {
	holder   *config.Holder
	settings *store.SettingsRepository
}

// NewConfigHandler creates a ConfigHandler. settings may be nil, in which
// case changes are not persisted.
func NewConfigHandler(holder *config.Holder, settings *store.SettingsRepository) *ConfigHandler {
	return &ConfigHandler{holder: holder, settings: settings}
}

// ServeHTTP implements http.Handler.
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.holder.Config())
	case http.MethodPut:
		h.put(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// put overlays the request body on the current configuration, so clients
// may send only the fields they change.
func (h *ConfigHandler) put(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxConfigBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	cfg, err := config.ParseOver(h.holder.Config(), body)
	switch {
	case errors.Is(err, config.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if h.settings != nil {
		if err := h.settings.SaveConfig(cfg); err != nil {
			if errors.Is(err, config.ErrInvalid) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to save config")
			return
		}
	}
	if err := h.holder.Set(cfg); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
