package web

import (
	"net/http"
	"strconv"
	"strings"

	"kitaportal/internal/adapters/api"
	"kitaportal/internal/adapters/http/middleware"
	"kitaportal/internal/domain/child"
)

// handleChildren handles GET (list) and POST (add) for /children.
func handleChildren(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if r.Method == "GET" {
		children, err := sess.Client.Children(ctx)
		if err != nil {
			children = nil
		}
		renderTemplate(w, r, "children.html", map[string]any{
			"Children": children,
			"MinAge":   child.MinAge,
			"MaxAge":   child.MaxAge,
		})
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	input, err := childInputFromForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	if err := sess.Client.AddChild(ctx, input); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", input.Name+" added.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/children", http.StatusSeeOther)
}

// handleChildUpdate handles POST /children/update.
func handleChildUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	input, err := childInputFromForm(r)
	if err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := parseUintField(r, "id")
	if id == 0 {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := sess.Client.EditChild(ctx, id, input); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Child updated.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/children", http.StatusSeeOther)
}

// handleChildDelete handles POST /children/delete.
func handleChildDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	ctx := r.Context()
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	id := parseUintField(r, "id")
	if id == 0 {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	if err := sess.Client.DeleteChild(ctx, id); err != nil {
		setFlash(w, "error", backendErrorMessage(err))
	} else {
		setFlash(w, "success", "Child removed.")
	}
	sessions.Sync(ctx, sess.Token)
	http.Redirect(w, r, "/children", http.StatusSeeOther)
}

// childInputFromForm reads the shared child form fields.
func childInputFromForm(r *http.Request) (api.ChildInput, error) {
	if err := r.ParseForm(); err != nil {
		return api.ChildInput{}, err
	}
	age, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("age")))
	return api.ChildInput{
		Name:      strings.TrimSpace(r.FormValue("name")),
		Age:       age,
		Birthdate: strings.TrimSpace(r.FormValue("birthdate")),
	}, nil
}
