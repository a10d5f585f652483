// Package api serves firmware verification over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/klipverify/internal/firmware"
	"github.com/samcharles93/klipverify/internal/logger"
	"github.com/samcharles93/klipverify/internal/report"
	"github.com/samcharles93/klipverify/internal/verify"
)

// DefaultMaxUpload bounds the size of an uploaded firmware image.
const DefaultMaxUpload = 8 << 20

type Server struct {
	verifier  *verify.Verifier
	store     *VerificationStore
	maxUpload int64
	log       logger.Logger
	clock     func() time.Time
}

type Config struct {
	Verifier  *verify.Verifier
	Store     *VerificationStore
	MaxUpload int64
	Logger    logger.Logger
}

func NewServer(cfg Config) *Server {
	s := &Server{
		verifier:  cfg.Verifier,
		store:     cfg.Store,
		maxUpload: cfg.MaxUpload,
		log:       cfg.Logger,
		clock:     time.Now,
	}
	if s.verifier == nil {
		s.verifier = verify.New(nil)
	}
	if s.store == nil {
		s.store = NewVerificationStore()
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/profiles", s.handleListProfiles)
	e.POST("/v1/verifications", s.handleCreateVerification)
	e.GET("/v1/verifications/:id", s.handleGetVerification)
	e.DELETE("/v1/verifications/:id", s.handleDeleteVerification)
}

func (s *Server) handleListProfiles(c *echo.Context) error {
	return c.JSON(http.StatusOK, ProfileList{
		Object: "list",
		Data:   s.verifier.Registry.Profiles(),
	})
}

// handleCreateVerification accepts a multipart upload with a "firmware" file.
// The MCU comes from the "mcu" query parameter, which is checked before the
// body is read, or from an "mcu" form field.
func (s *Server) handleCreateVerification(c *echo.Context) error {
	req := c.Request()

	mcu := req.URL.Query().Get("mcu")
	if mcu != "" {
		if _, err := s.verifier.Profile(mcu); err != nil {
			return writeBadRequest(c, err.Error(), "mcu")
		}
	}

	req.Body = http.MaxBytesReader(c.Response(), req.Body, s.maxUpload)
	if err := req.ParseMultipartForm(s.maxUpload); err != nil {
		if isTooLarge(err) {
			return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", "upload too large", "firmware")
		}
		return writeBadRequest(c, fmt.Sprintf("invalid multipart body: %v", err), "")
	}
	if mcu == "" {
		mcu = req.FormValue("mcu")
	}
	if mcu == "" {
		return writeBadRequest(c, "mcu is required", "mcu")
	}
	p, err := s.verifier.Profile(mcu)
	if err != nil {
		return writeBadRequest(c, err.Error(), "mcu")
	}

	file, header, err := req.FormFile("firmware")
	if err != nil {
		return writeBadRequest(c, "firmware file is required", "firmware")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return writeBadRequest(c, fmt.Sprintf("read firmware: %v", err), "firmware")
	}

	ctx := logger.WithContext(req.Context(), s.log)
	res, err := s.verifier.VerifyImage(ctx, p, firmware.FromBytes(header.Filename, data))
	if err != nil {
		return writeError(c, http.StatusServiceUnavailable, "server_error", err.Error(), "")
	}

	v := s.store.Save(newVerification(res, header.Filename, s.clock()))
	s.log.Info("verification stored", "id", v.ID, "mcu", v.MCU, "status", v.Status)
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleGetVerification(c *echo.Context) error {
	v, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "verification not found")
	}
	return c.JSON(http.StatusOK, v)
}

func (s *Server) handleDeleteVerification(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "verification not found")
	}
	return c.JSON(http.StatusOK, DeleteVerificationResp{
		ID:      id,
		Object:  "verification",
		Deleted: true,
	})
}

func newVerification(res verify.Result, filename string, now time.Time) Verification {
	doc := report.NewDocument(res)
	return Verification{
		Object:      "verification",
		CreatedAt:   now.Unix(),
		MCU:         doc.MCU,
		Filename:    filename,
		Size:        res.Size,
		Status:      doc.Status,
		Offset:      doc.Offset,
		Application: doc.Application,
		Version:     doc.Version,
		Checks:      doc.Checks,
		AllMatched:  doc.AllMatched,
	}
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
