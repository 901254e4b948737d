package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/splax/quill/internal/domain"
)

type createCommentRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type updateCommentRequest struct {
	Content *string `json:"content" validate:"omitnil,min=1,max=5000"`
}

var errPostIDRequired = errors.New("post_id query parameter must be a positive integer")

func (r *Router) handleComments(w http.ResponseWriter, req *http.Request) {
	postID, err := postIDFromQuery(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Method {
	case http.MethodGet:
		r.listComments(w, req, postID)
	case http.MethodPost:
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) { r.createComment(w, req, postID) })(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleComment(w http.ResponseWriter, req *http.Request) {
	commentID, ok := pathID(req.URL.Path, "/api/comments/")
	if !ok {
		r.notFound(w)
		return
	}
	postID, err := postIDFromQuery(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch req.Method {
	case http.MethodPatch:
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) { r.updateComment(w, req, postID, commentID) })(w, req)
	case http.MethodDelete:
		r.requireAuth(func(w http.ResponseWriter, req *http.Request) { r.deleteComment(w, req, postID, commentID) })(w, req)
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) createComment(w http.ResponseWriter, req *http.Request, postID int64) {
	var payload createCommentRequest
	if err := r.decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, _ := currentUser(req)
	created, err := r.comments.Create(req.Context(), user, postID, payload.Content)
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, marshalComment(*created))
}

func (r *Router) listComments(w http.ResponseWriter, req *http.Request, postID int64) {
	page, err := pageFromQuery(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	comments, err := r.comments.List(req.Context(), postID, page)
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	payload := make([]map[string]any, 0, len(comments))
	for _, c := range comments {
		payload = append(payload, marshalComment(c))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (r *Router) updateComment(w http.ResponseWriter, req *http.Request, postID, commentID int64) {
	var payload updateCommentRequest
	if err := r.decodeJSON(w, req, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user, _ := currentUser(req)
	updated, err := r.comments.Update(req.Context(), user, postID, commentID, domain.CommentPatch{Content: payload.Content})
	if err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	writeJSON(w, http.StatusOK, marshalComment(*updated))
}

func (r *Router) deleteComment(w http.ResponseWriter, req *http.Request, postID, commentID int64) {
	user, _ := currentUser(req)
	if err := r.comments.Delete(req.Context(), user, postID, commentID); err != nil {
		writeServiceError(w, r.logger, req, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func marshalComment(c domain.Comment) map[string]any {
	return map[string]any{
		"id":         c.ID,
		"content":    c.Content,
		"user_name":  c.AuthorName,
		"post_id":    c.PostID,
		"created_at": c.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": c.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func postIDFromQuery(req *http.Request) (int64, error) {
	raw := strings.TrimSpace(req.URL.Query().Get("post_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errPostIDRequired
	}
	return id, nil
}
