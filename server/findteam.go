package server

import (
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"

	"github.com/existflow/scic/internal/form"
	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/logger"
)

// skillParams accepts both ?skill=a&skill=b and ?skill=a,b
func skillParams(c echo.Context) []string {
	var skills []string
	for _, v := range c.QueryParams()["skill"] {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				skills = append(skills, s)
			}
		}
	}
	return skills
}

func (s *Server) handleFindTeam(c echo.Context) error {
	n, err := pageParam(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "page must be a number")
	}

	members, err := s.backend.ListAcceptedMembers(c.Request().Context())
	if err != nil {
		return s.backendError(c, "list members", err)
	}

	filtered := listview.FilterMembers(members, skillParams(c), c.QueryParam("q"))
	return c.JSON(http.StatusOK, listview.Paginate(filtered, n, listview.MembersPerPage))
}

func (s *Server) handleFindTeamRegister(c echo.Context) error {
	var reg form.Registration
	if err := c.Bind(&reg); err != nil {
		return jsonError(c, http.StatusBadRequest, "invalid request")
	}

	if err := validation.Validate(reg); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, errorBody{
			Error:  "please fix the highlighted fields",
			Fields: form.FieldErrors(err),
		})
	}

	member, err := s.backend.Register(c.Request().Context(), reg)
	if err != nil {
		return s.backendError(c, "register", err)
	}

	s.log.Info("Team finder registration", logger.F("email", reg.Email))
	return c.JSON(http.StatusCreated, member)
}
