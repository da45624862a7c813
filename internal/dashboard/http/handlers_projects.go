package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/civictrack/civictrack-go/internal/feedback"
	"github.com/civictrack/civictrack-go/internal/format"
	"github.com/civictrack/civictrack-go/internal/projects/domain"
	"github.com/gin-gonic/gin"
)

func (h *Handler) GetProject(c *gin.Context) {
	p, err := h.projects.GetProjectByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p, "display": display(p)})
}

func (h *Handler) ListByCity(c *gin.Context) {
	city := strings.TrimSpace(c.Param("city"))
	if city == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "city is required"})
		return
	}
	items, err := h.cities.GetByCity(c.Request.Context(), city)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) ListFeedback(c *gin.Context) {
	items, err := h.feedback.ListByProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "feedback": items})
}

// SubmitFeedback accepts a multipart form with comment, anonymous, latitude,
// longitude and any number of photos files.
func (h *Handler) SubmitFeedback(c *gin.Context) {
	sub := feedback.Submission{
		ProjectID: c.Param("id"),
		Comment:   c.PostForm("comment"),
	}
	if v := c.PostForm("anonymous"); v != "" {
		anon, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "anonymous must be a boolean"})
			return
		}
		sub.IsAnonymous = anon
	}
	var err error
	if sub.Latitude, err = formFloat(c, "latitude"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "latitude must be a number"})
		return
	}
	if sub.Longitude, err = formFloat(c, "longitude"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "longitude must be a number"})
		return
	}

	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["photos"] {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unreadable photo"})
				return
			}
			defer f.Close()
			sub.Photos = append(sub.Photos, feedback.Photo{Filename: fh.Filename, Content: f})
		}
	}

	fb, err := h.feedback.Submit(c.Request.Context(), sub)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "feedback": fb})
}

func formFloat(c *gin.Context, key string) (*float64, error) {
	v := strings.TrimSpace(c.PostForm(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func display(p *domain.Project) gin.H {
	out := gin.H{
		"status":  p.Status.Label(),
		"budget":  format.Currency(p.Budget),
		"compact": format.Compact(p.Budget),
	}
	if p.StartDate != nil {
		out["startDate"] = format.Date(*p.StartDate)
	}
	if p.ExpectedCompletion != nil {
		out["expectedCompletion"] = format.Date(*p.ExpectedCompletion)
	}
	return out
}
