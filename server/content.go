package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handleContent(c echo.Context) error {
	return c.JSON(http.StatusOK, s.site)
}

func (s *Server) handleContentSection(c echo.Context) error {
	section, ok := s.site.Section(c.Param("section"))
	if !ok {
		return jsonError(c, http.StatusNotFound, "unknown section")
	}
	return c.JSON(http.StatusOK, section)
}
