package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/existflow/scic/internal/listview"
	"github.com/existflow/scic/internal/logger"
	"github.com/existflow/scic/internal/model"
)

// newsItem is a post as listed on the news page
type newsItem struct {
	model.Post
	Excerpt string `json:"excerpt"`
}

// newsArticle is a post with the other recent posts shown beside it
type newsArticle struct {
	Post   *model.Post  `json:"post"`
	Recent []model.Post `json:"recent"`
}

// pageParam reads ?page=, defaulting to the first page
func pageParam(c echo.Context) (int, error) {
	page := 1
	err := echo.QueryParamsBinder(c).Int("page", &page).BindError()
	return page, err
}

func (s *Server) handleNewsList(c echo.Context) error {
	n, err := pageParam(c)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "page must be a number")
	}

	posts, err := s.backend.ListPosts(c.Request().Context())
	if err != nil {
		return s.backendError(c, "list posts", err)
	}
	listview.SortPostsNewest(posts)

	page := listview.Paginate(posts, n, listview.NewsPerPage)
	items := make([]newsItem, len(page.Items))
	for i, p := range page.Items {
		items[i] = newsItem{Post: p, Excerpt: listview.Excerpt(p.Content, listview.ExcerptLength)}
	}

	return c.JSON(http.StatusOK, listview.Page[newsItem]{
		Items:      items,
		Number:     page.Number,
		TotalPages: page.TotalPages,
		Total:      page.Total,
	})
}

func (s *Server) handleNewsShow(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")

	post, err := s.backend.GetPost(ctx, id)
	if err != nil {
		return s.backendError(c, "get post", err)
	}

	// The sidebar is optional
	recent := []model.Post{}
	if posts, err := s.backend.ListPosts(ctx); err != nil {
		s.log.Warn("Failed to load recent posts", logger.F("error", err))
	} else {
		recent = listview.RecentPosts(posts, id, listview.RecentPostsCount)
	}

	return c.JSON(http.StatusOK, newsArticle{Post: post, Recent: recent})
}
