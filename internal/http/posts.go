package httpx

import (
	"net/http"
	"time"

	"github.com/splax/quill/internal/domain"
	"github.com/splax/quill/internal/service/post"
)

type createPostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

type updatePostRequest struct {
	Title   *string `json:"title" validate:"omitnil,min=1,max=200"`
	Content *string `json:"content" validate:"omitnil,min=1"`
}

func (r *Router) handlePosts(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		r.listPosts(w, req)
	case http.MethodPost:
		r.requireAuth(r.createPost)(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handlePost(w http.ResponseWriter, req *http.Request) {
	id, ok := pathID(req.URL.Path, "/api/posts/")
	if !ok {
		r.notFound(w)
		return
	}
	switch req.Method {
	case http.MethodGet:
		r.getPost(w, req, id)
	case http.MethodPatch:
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) { r.updatePost(w, req, id) })(w, req)
	case http.MethodDelete:
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) { r.deletePost(w, req, id) })(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) createPost(w http.ResponseWriter, req *http.Request) {
	var payload createPostRequest
	if err := r.decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, _ := currentUser(req)
	created, err := r.posts.Create(req.Context(), user, post.CreateInput{Title: payload.Title, Content: payload.Content})
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, marshalPost(*created))
}

func (r *Router) listPosts(w http.ResponseWriter, req *http.Request) {
	page, err := pageFromQuery(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	posts, err := r.posts.List(req.Context(), page)
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	payload := make([]map[string]any, 0, len(posts))
	for _, p := range posts {
		payload = append(payload, marshalPost(p))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) getPost(w http.ResponseWriter, req *http.Request, id int64) {
	found, err := r.posts.Get(req.Context(), id)
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	writeJSON(w, http.StatusOK, marshalPost(*found))
}

func (r *Router) updatePost(w http.ResponseWriter, req *http.Request, id int64) {
	var payload updatePostRequest
	if err := r.decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, _ := currentUser(req)
	updated, err := r.posts.Update(req.Context(), user, id, domain.PostPatch{Title: payload.Title, Content: payload.Content})
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	writeJSON(w, http.StatusOK, marshalPost(*updated))
}

func (r *Router) deletePost(w http.ResponseWriter, req *http.Request, id int64) {
	user, _ := currentUser(req)
	if err := r.posts.Delete(req.Context(), user, id); err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func marshalPost(p domain.Post) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"title":      p.Title,
		"content":    p.Content,
		"user_name":  p.AuthorName,
		"created_at": p.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func pageFromQuery(req *http.Request) (domain.Page, error) {
	skip, err := queryInt(req, "skip", 0)
	if err != nil {
		return domain.Page{}, err
	}
	limit, err := queryInt(req, "limit", 0)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Skip: skip, Limit: limit}, nil
}
