package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ngclient/ngutils/internal/errors"
	"github.com/ngclient/ngutils/pkg/headtags"
	"github.com/ngclient/ngutils/pkg/render"
)

type replaceTagRequest struct {
	TagName   string                   `json:"tagName"`
	AttrName  string                   `json:"attrName"`
	AttrValue string                   `json:"attrValue"`
	Tag       *headtags.ContributedTag `json:"tag"`
}

type replaceTagResponse struct {
	Previous *headtags.ContributedTag `json:"previous"`
}

type viewportRequest struct {
	// Mode is a mode number (0-3) or name ("deny-zoom"). Missing means default.
	Mode json.RawMessage `json:"mode"`
}

type styleClassBody struct {
	StyleClass string `json:"styleclass"`
}

// client resolves the {clientID} route parameter to a live client.
func (s *Server) client(r *http.Request) (*Client, error) {
	return s.clients.Get(r.Context(), urlParam(r, "clientID"))
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Service.Model())
}

func (s *Server) handleHead(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	html, err := s.renderer.RenderHeadString(c.Service.HeaderTags())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	form := r.URL.Query().Get("form")
	class, _ := c.Service.GetFormStyleClass(form)
	page := render.PageData{
		Title:     s.config.PageTitle,
		Lang:      s.config.PageLang,
		Tags:      c.Service.HeaderTags(),
		FormName:  form,
		FormClass: class,
	}
	if r.URL.Query().Get("watch") != "0" {
		page.WatchURL = "/api/clients/" + url.PathEscape(c.ID) + "/watch"
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderPage(&buf, page); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleReplaceTag(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var req replaceTagRequest
	if err := decodeJSON(w, r, s.config.MaxBodyBytes, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.Tag != nil {
		if err := req.Tag.Validate(); err != nil {
			writeError(w, s.logger, errors.New("N001").WithDetail(err.Error()).Wrap(err))
			return
		}
	}

	prev := c.Service.ReplaceHeaderTag(req.TagName, req.AttrName, req.AttrValue, req.Tag)
	writeJSON(w, http.StatusOK, replaceTagResponse{Previous: prev})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var req viewportRequest
	if err := decodeJSON(w, r, s.config.MaxBodyBytes, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	mode, err := parseViewportMode(req.Mode)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	c.Service.SetViewportMetaForMobileAwareSites(mode)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	c.Service.Cleanup()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetStyleClass(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	form := urlParam(r, "form")
	class, ok := c.Service.GetFormStyleClass(form)
	if !ok {
		writeError(w, s.logger, errors.New("N002").WithDetailf("form %q has no style classes", form))
		return
	}
	writeJSON(w, http.StatusOK, styleClassBody{StyleClass: class})
}

func (s *Server) handleAddStyleClass(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var req styleClassBody
	if err := decodeJSON(w, r, s.config.MaxBodyBytes, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.StyleClass == "" {
		writeError(w, s.logger, errors.New("N020").WithDetail("styleclass is required"))
		return
	}

	c.Service.AddFormStyleClass(urlParam(r, "form"), req.StyleClass)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveStyleClass(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	c.Service.RemoveFormStyleClass(urlParam(r, "form"), urlParam(r, "class"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "clientID")
	if !ValidClientID(id) {
		writeError(w, s.logger, errors.New("N021").WithDetailf("client ID %q", id))
		return
	}
	if err := s.clients.Close(r.Context(), id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	c, err := s.client(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	// On failure the upgrader has already replied.
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.WatchError("upgrade")
		s.logger.Warn("watch rejected", "client", c.ID, "error", errors.New("N040").Wrap(err))
		return
	}

	if err := c.Hub.Add(conn, c.Service.Current); err != nil {
		s.metrics.WatchError("write")
		s.logger.Debug("watch closed before start", "client", c.ID, "error", errors.New("N041").Wrap(err))
		conn.Close()
		return
	}
	defer c.Hub.Remove(conn)

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, s.config.WatchWriteWait, done)

	// The feed is one-way; reading only detects the close and handles pongs.
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// urlParam returns the unescaped value of a chi route parameter.
func urlParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func parseViewportMode(raw json.RawMessage) (headtags.ViewportMode, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return headtags.ViewportDefault, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		mode := headtags.ViewportMode(n)
		if mode < headtags.ViewportDefault || mode > headtags.ViewportDenyZoomIn {
			return 0, errors.New("N003").WithDetailf("mode %d is not between 0 and 3", n)
		}
		return mode, nil
	}

	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		if mode, ok := headtags.ParseViewportMode(name); ok {
			return mode, nil
		}
		return 0, errors.New("N003").WithDetailf("unknown mode %q", name)
	}
	return 0, errors.New("N003").WithDetail("mode must be a number or a name")
}
