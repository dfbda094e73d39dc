package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kanade/shortform/internal/service"
)

// LibraryHandler serves the curated popular-content lists.
type LibraryHandler struct {
	library *service.LibraryService
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(library *service.LibraryService) *LibraryHandler {
	return &LibraryHandler{library: library}
}

func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return page, limit
}

// Overview returns the section names the library exposes.
func (h *LibraryHandler) Overview(c echo.Context) error {
	return JSON(c, http.StatusOK, map[string]any{
		"sections": []string{"tv-shows", "movies", "streamers"},
	})
}

// TopTVShows returns a page of the most popular TV shows.
func (h *LibraryHandler) TopTVShows(c echo.Context) error {
	page, limit := pageParams(c)
	result, err := h.library.TopTVShows(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, result)
}

// TopMovies returns a page of the most popular movies.
func (h *LibraryHandler) TopMovies(c echo.Context) error {
	page, limit := pageParams(c)
	result, err := h.library.TopMovies(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, result)
}

// TopStreamers returns a page of the curated streamer list.
func (h *LibraryHandler) TopStreamers(c echo.Context) error {
	page, limit := pageParams(c)
	return JSON(c, http.StatusOK, h.library.TopStreamers(page, limit))
}
