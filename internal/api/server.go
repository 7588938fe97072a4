package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"
	"github.com/samcharles93/xclbin/internal/logger"
	"github.com/samcharles93/xclbin/internal/version"
	"github.com/samcharles93/xclbin/internal/xclbinstore"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

// Store is the read-only view of an opened xclbin the handlers serve.
// *xclbinstore.File implements it.
type Store interface {
	Header() (axlf.Header, error)
	Sections() []axlf.SectionDescriptor
	Section(kind axlf.SectionKind) (axlf.Payload, error)
	SectionData(kind axlf.SectionKind) ([]byte, error)
	Kernels() ([]xclbinstore.Kernel, error)
	Kernel(name string) (xclbinstore.Kernel, error)
	Mirror() ([]byte, error)
	Validate() error
}

type Server struct {
	store Store
	log   logger.Logger
}

func NewServer(store Store, log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{store: store, log: log}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/header", s.handleHeader)
	e.GET("/v1/sections", s.handleListSections)
	e.GET("/v1/sections/:kind", s.handleGetSection)
	e.GET("/v1/kernels", s.handleListKernels)
	e.GET("/v1/kernels/:name", s.handleGetKernel)
	e.GET("/v1/mirror", s.handleMirror)
	e.GET("/v1/validate", s.handleValidate)
	e.GET("/v1/version", s.handleVersion)
}

func (s *Server) handleHeader(c *echo.Context) error {
	h, err := s.store.Header()
	if err != nil {
		return s.writeErr(c, err, "")
	}
	return c.JSON(http.StatusOK, HeaderResponse{
		Object:        "xclbin.header",
		Length:        h.Length,
		TimeStamp:     h.TimeStamp,
		Version:       h.Version(),
		Mode:          h.Mode,
		ActionMask:    h.ActionMask,
		InterfaceUUID: h.InterfaceUUID.String(),
		XclbinUUID:    h.XclbinUUID().String(),
		PlatformVBNV:  h.PlatformVBNV,
		DebugBin:      h.DebugBin,
		NumSections:   h.NumSections,
	})
}

func (s *Server) handleListSections(c *echo.Context) error {
	sections := s.store.Sections()
	data := make([]SectionSummary, 0, len(sections))
	for i, d := range sections {
		data = append(data, SectionSummary{
			Index:  i,
			Kind:   d.Kind,
			Name:   d.Name,
			Offset: d.Offset,
			Size:   d.Size,
		})
	}
	return c.JSON(http.StatusOK, ListResponse[SectionSummary]{Object: "list", Data: data})
}

func (s *Server) handleGetSection(c *echo.Context) error {
	kind, err := axlf.ParseSectionKind(c.Param("kind"))
	if err != nil {
		return s.writeErr(c, newInvalidRequest(err.Error()), "kind")
	}

	raw, err := parseBoolQuery(c.QueryParam("raw"))
	if err != nil {
		return writeBadRequest(c, "raw: "+err.Error())
	}
	if raw {
		data, err := s.store.SectionData(kind)
		if err != nil {
			return s.writeErr(c, err, "kind")
		}
		return c.Blob(http.StatusOK, echo.MIMEOctetStream, data)
	}

	p, err := s.store.Section(kind)
	if err != nil {
		return s.writeErr(c, err, "kind")
	}
	body, err := axlf.MarshalPayload(p)
	if err != nil {
		return s.writeErr(c, err, "")
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (s *Server) handleListKernels(c *echo.Context) error {
	kernels, err := s.store.Kernels()
	if err != nil {
		return s.writeErr(c, err, "")
	}
	if kernels == nil {
		kernels = []xclbinstore.Kernel{}
	}
	return c.JSON(http.StatusOK, ListResponse[xclbinstore.Kernel]{Object: "list", Data: kernels})
}

func (s *Server) handleGetKernel(c *echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return writeBadRequest(c, "kernel name is required")
	}
	k, err := s.store.Kernel(name)
	if err != nil {
		return s.writeErr(c, err, "name")
	}
	return c.JSON(http.StatusOK, k)
}

func (s *Server) handleMirror(c *echo.Context) error {
	body, err := s.store.Mirror()
	if err != nil {
		return s.writeErr(c, err, "")
	}
	return c.JSONBlob(http.StatusOK, body)
}

func (s *Server) handleValidate(c *echo.Context) error {
	resp := ValidateResponse{Object: "xclbin.validation", Valid: true, Problems: []string{}}
	for _, p := range xclbinstore.Problems(s.store.Validate()) {
		resp.Valid = false
		resp.Problems = append(resp.Problems, p.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleVersion(c *echo.Context) error {
	info := version.Resolve()
	return c.JSON(http.StatusOK, VersionResponse{
		Object:    "version",
		Version:   info.Version,
		Commit:    info.Commit,
		BuildTime: info.BuildTime,
	})
}

func parseBoolQuery(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
