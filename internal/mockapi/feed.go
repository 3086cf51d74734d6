package mockapi

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nicolasllerenas/hackathon-tecsup/internal/domain"
)

func (s *Server) listFeed(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	tags := splitList(c.Query("tags"))
	kind := domain.ContentType(c.Query("contentType"))
	uid := currentUser(c)

	s.mu.Lock()
	var all []*domain.FeedResource
	for i := len(s.resources) - 1; i >= 0; i-- {
		r := s.resources[i]
		if kind != "" && r.ContentType != kind {
			continue
		}
		if len(tags) > 0 && len(intersect(r.Tags, tags)) == 0 {
			continue
		}
		all = append(all, s.renderResource(r, uid))
	}
	s.mu.Unlock()

	total := len(all)
	page := window(all, offset, limit)
	respondOK(c, gin.H{
		"resources":  page,
		"pagination": gin.H{"total": total, "limit": limit, "offset": offset, "hasMore": offset+len(page) < total},
	})
}

func (s *Server) createResource(c *gin.Context) {
	title := strings.TrimSpace(c.PostForm("title"))
	kind := domain.ContentType(c.PostForm("contentType"))
	if title == "" || kind == "" {
		respondError(c, http.StatusBadRequest, "missing_fields", errors.New("title and contentType are required"))
		return
	}
	uid := currentUser(c)
	r := &domain.FeedResource{
		ID:          newID(),
		Title:       title,
		ContentType: kind,
		Content:     c.PostForm("content"),
		Tags:        splitList(c.PostForm("tags")),
		CreatedAt:   s.opts.Now(),
	}
	if fh, err := c.FormFile("media"); err == nil {
		r.MediaURL = fmt.Sprintf("/media/feed/%s%s", r.ID, filepath.Ext(fh.Filename))
	}

	s.mu.Lock()
	r.Author = summarize(s.users[uid])
	s.resources = append(s.resources, r)
	s.award(uid, domain.PointsCreateResource, "create_resource", "Shared a resource", r.ID)
	out := s.renderResource(r, uid)
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "data": gin.H{"resource": out, "pointsEarned": domain.PointsCreateResource}})
}

func (s *Server) likeResource(c *gin.Context)   { s.setLike(c, true) }
func (s *Server) unlikeResource(c *gin.Context) { s.setLike(c, false) }

func (s *Server) setLike(c *gin.Context, liked bool) {
	id := c.Param("id")
	uid := currentUser(c)

	s.mu.Lock()
	var r *domain.FeedResource
	for _, res := range s.resources {
		if res.ID == id {
			r = res
			break
		}
	}
	if r == nil {
		s.mu.Unlock()
		respondError(c, http.StatusNotFound, "not_found", errors.New("Resource not found"))
		return
	}
	if s.likes[id] == nil {
		s.likes[id] = map[string]bool{}
	}
	if liked {
		s.likes[id][uid] = true
	} else {
		delete(s.likes[id], uid)
	}
	total := len(s.likes[id])
	r.Likes = total
	if liked && total == 10 {
		s.award(r.Author.ID, domain.PointsResourceTenLikes, "resource_ten_likes", "Resource reached 10 likes", r.ID)
	}
	s.mu.Unlock()

	respondOK(c, gin.H{"success": true, "data": gin.H{"liked": liked, "totalLikes": total}})
}

// renderResource copies r with the viewer's like state. Callers hold s.mu.
func (s *Server) renderResource(r *domain.FeedResource, viewer string) *domain.FeedResource {
	cp := *r
	cp.IsLiked = s.likes[r.ID][viewer]
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	return &cp
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
