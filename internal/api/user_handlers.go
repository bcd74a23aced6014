package api

import (
	"net/http"

	"github.com/hackgods/healthcare-portal/internal/upload"
	"github.com/hackgods/healthcare-portal/internal/user"
)

type userResponse struct {
	Message string     `json:"message,omitempty"`
	User    *user.User `json:"user"`
}

func getMeHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := svc.Get(r.Context(), identity(r).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{User: u})
	}
}

// updateMeHandler accepts JSON, where profile_picture_url may be a data URL,
// or multipart form data with the picture in the profile_picture field. The
// replaced picture is deleted once the update lands.
func updateMeHandler(svc UserService, images ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := identity(r).ID

		var (
			p   user.Patch
			img *upload.Image
			err error
		)
		if isMultipart(r) {
			if !parseMultipart(w, r) {
				return
			}
			p = user.Patch{
				Email:       formString(r, "email"),
				FirstName:   formString(r, "first_name"),
				LastName:    formString(r, "last_name"),
				Phone:       formString(r, "phone"),
				DateOfBirth: formString(r, "date_of_birth"),
			}
			img, err = formImage(r, "profile_picture")
		} else {
			if !decodeJSON(w, r, &p) {
				return
			}
			img, err = inlineImage(p.ProfilePictureURL)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		var prev *string
		if p.ProfilePictureURL != nil || img != nil {
			current, err := svc.Get(r.Context(), id)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			prev = current.ProfilePictureURL
		}

		saved, err := writeImage(images, upload.KindProfilePicture, id, img)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if saved != nil {
			p.ProfilePictureURL = saved
		}

		u, err := svc.UpdateMe(r.Context(), id, p)
		if err != nil {
			if saved != nil {
				_ = images.Remove(*saved)
			}
			writeServiceError(w, r, err)
			return
		}
		dropReplaced(r, images, prev, u.ProfilePictureURL)
		writeJSON(w, http.StatusOK, userResponse{Message: "Profile updated successfully", User: u})
	}
}

func adminListUsersHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		users, err := svc.List(r.Context(), user.ListFilter{
			Role:   q.Get("role"),
			Search: q.Get("search"),
			Page:   queryInt(r, "page"),
			Limit:  queryInt(r, "limit"),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"users": users})
	}
}

func adminGetUserHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		u, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{User: u})
	}
}

func adminCreateUserHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req user.CreateInput
		if !decodeJSON(w, r, &req) {
			return
		}
		u, err := svc.AdminCreate(r.Context(), req)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "User created successfully",
			"user":    u.Summary(),
		})
	}
}

func adminUpdateUserHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var p user.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		u, err := svc.AdminUpdate(r.Context(), id, p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, userResponse{Message: "User updated successfully", User: u})
	}
}

func adminDeleteUserHandler(svc UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), identity(r), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully", ID: id})
	}
}
