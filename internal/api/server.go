package api

import (
	"context"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/srmkit/internal/convert"
	"github.com/samcharles93/srmkit/internal/logger"
	"github.com/samcharles93/srmkit/internal/webui"
	"github.com/samcharles93/srmkit/pkg/srm"
)

// Server exposes merge and split over HTTP. Uploaded fields use the same
// keys as the converter: battery_file, controller_pack_1..4,
// controller_pack_mp, srm_file and the swap_bytes, is_mupen and mupen_out
// toggles.
type Server struct {
	store *DownloadStore
	log   logger.Logger
}

func NewServer(store *DownloadStore, log logger.Logger) *Server {
	if store == nil {
		store = NewDownloadStore(0)
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{store: store, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/", s.handleIndex)
	e.GET("/assets/:name", s.handleAsset)
	e.POST("/v1/merge", s.handleMerge)
	e.POST("/v1/split", s.handleSplit)
	e.POST("/v1/inspect", s.handleInspect)
	e.GET("/v1/downloads/:id", s.handleGetDownload)
	e.DELETE("/v1/downloads/:id", s.handleDeleteDownload)
}

type convertFunc func(cv *convert.Converter, ctx context.Context) (convert.Result, error)

func (s *Server) handleMerge(c *echo.Context) error {
	return s.runConversion(c, "merge", (*convert.Converter).Merge)
}

func (s *Server) handleSplit(c *echo.Context) error {
	return s.runConversion(c, "split", (*convert.Converter).Split)
}

func (s *Server) runConversion(c *echo.Context, op string, run convertFunc) error {
	form, err := parseForm(c.Response(), c.Request())
	if err != nil {
		return s.writeFailure(c, op, err)
	}
	defer form.close()

	id := "conv_" + uuid.NewString()
	sink := &storeSink{store: s.store}
	cv := &convert.Converter{Files: form, Toggles: form, Sink: sink}
	ctx := logger.WithContext(c.Request().Context(), s.log.With("request", id))

	res, err := run(cv, ctx)
	if err != nil {
		return s.writeFailure(c, op, err)
	}

	downloads := sink.out
	if downloads == nil {
		downloads = []Download{}
	}
	return writeJSON(c, http.StatusOK, ConversionResponse{
		ID:        id,
		Object:    "conversion",
		Operation: op,
		Message:   res.Message,
		Downloads: downloads,
	})
}

// writeFailure maps form and segment errors to 400 and anything else to 500.
func (s *Server) writeFailure(c *echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), fieldOf(err))
	case errors.Is(err, srm.ErrSegmentOverflow):
		return writeBadRequest(c, err.Error())
	default:
		s.log.Error("request failed", "op", op, "err", err)
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "")
	}
}

func (s *Server) handleInspect(c *echo.Context) error {
	form, err := parseForm(c.Response(), c.Request())
	if err != nil {
		return s.writeFailure(c, "inspect", err)
	}
	defer form.close()

	f, err := form.Fetch(c.Request().Context(), convert.KeySrmFile)
	if err == nil && f == nil {
		err = badForm(convert.KeySrmFile, "%s", convert.MsgNoInputFile)
	}
	if err != nil {
		return s.writeFailure(c, "inspect", err)
	}
	buf, err := srm.FromBytes(f.Data)
	if err != nil {
		s.log.Warn("inspecting short container", "file", f.Name, "size", len(f.Data))
	}
	return writeJSON(c, http.StatusOK, InspectResponse{
		Object: "srm",
		Name:   f.Name,
		Info:   srm.Describe(buf),
	})
}

func (s *Server) handleIndex(c *echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/html; charset=UTF-8")
	res.WriteHeader(http.StatusOK)
	_, err := res.Write(webui.Index())
	return err
}

func (s *Server) handleAsset(c *echo.Context) error {
	a, err := webui.Lookup(c.Param("name"))
	if err != nil {
		if errors.Is(err, webui.ErrNoAsset) {
			return writeNotFound(c, "asset not found")
		}
		return s.writeFailure(c, "asset", err)
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, a.ContentType)
	res.WriteHeader(http.StatusOK)
	_, err = res.Write(a.Data)
	return err
}

func (s *Server) handleGetDownload(c *echo.Context) error {
	d, data, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "download not found")
	}
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/octet-stream")
	res.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": d.Name}))
	res.Header().Set("Content-Length", strconv.Itoa(len(data)))
	res.WriteHeader(http.StatusOK)
	_, err := res.Write(data)
	return err
}

func (s *Server) handleDeleteDownload(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "download not found")
	}
	return writeJSON(c, http.StatusOK, DeleteDownloadResp{ID: id, Object: "download.deleted", Deleted: true})
}
