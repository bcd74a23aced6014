package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/hackgods/healthcare-portal/internal/facility"
	"github.com/hackgods/healthcare-portal/internal/provider"
	"github.com/hackgods/healthcare-portal/internal/upload"
)

type providerResponse struct {
	Message  string             `json:"message,omitempty"`
	Provider *provider.Provider `json:"provider"`
}

type windowResponse struct {
	Message      string           `json:"message,omitempty"`
	Availability *provider.Window `json:"availability"`
}

type facilityResponse struct {
	Message  string             `json:"message,omitempty"`
	Facility *facility.Facility `json:"facility"`
}

func listProvidersHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		providers, err := svc.List(r.Context(), provider.ListFilter{
			Specialty: q.Get("specialty"),
			Search:    q.Get("search"),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
	}
}

func providersBySpecialtyHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providers, err := svc.ListBySpecialty(r.Context(), chi.URLParam(r, "specialty"))
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"providers": providers})
	}
}

func getProviderHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		p, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, providerResponse{Provider: p})
	}
}

// providerPatchFromForm reads the multipart variant of a provider write.
func providerPatchFromForm(r *http.Request) provider.Patch {
	return provider.Patch{
		FirstName: formString(r, "first_name"),
		LastName:  formString(r, "last_name"),
		Specialty: formString(r, "specialty"),
		Bio:       formString(r, "bio"),
		PhotoURL:  formString(r, "photo_url"),
		Email:     formString(r, "email"),
		Phone:     formString(r, "phone"),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// adminCreateProviderHandler checks the photo before the insert and stores
// it afterwards so the file name can carry the new provider id. A failure
// after the insert removes the provider again.
func adminCreateProviderHandler(svc ProviderService, images ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			in  provider.Input
			img *upload.Image
			err error
		)
		if isMultipart(r) {
			if !parseMultipart(w, r) {
				return
			}
			p := providerPatchFromForm(r)
			in = provider.Input{
				FirstName: deref(p.FirstName),
				LastName:  deref(p.LastName),
				Specialty: deref(p.Specialty),
				Bio:       p.Bio,
				Email:     p.Email,
				Phone:     p.Phone,
			}
			img, err = formImage(r, "photo")
		} else {
			if !decodeJSON(w, r, &in) {
				return
			}
			img, err = inlineImage(in.PhotoURL)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if img != nil {
			in.PhotoURL = nil
		}

		created, err := svc.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if img == nil {
			writeJSON(w, http.StatusCreated, providerResponse{Message: "Provider created successfully", Provider: created})
			return
		}

		photo, err := writeImage(images, upload.KindProviderPhoto, created.ID, img)
		if err == nil {
			var withPhoto *provider.Provider
			if withPhoto, err = svc.Update(r.Context(), created.ID, provider.Patch{PhotoURL: photo}); err == nil {
				writeJSON(w, http.StatusCreated, providerResponse{Message: "Provider created successfully", Provider: withPhoto})
				return
			}
			_ = images.Remove(*photo)
		}
		if derr := svc.Delete(context.WithoutCancel(r.Context()), created.ID); derr != nil {
			zerolog.Ctx(r.Context()).Warn().Err(derr).Int64("provider_id", created.ID).Msg("roll back provider create")
		}
		writeServiceError(w, r, err)
	}
}

func adminUpdateProviderHandler(svc ProviderService, images ImageStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}

		var (
			p   provider.Patch
			img *upload.Image
			err error
		)
		if isMultipart(r) {
			if !parseMultipart(w, r) {
				return
			}
			p = providerPatchFromForm(r)
			img, err = formImage(r, "photo")
		} else {
			if !decodeJSON(w, r, &p) {
				return
			}
			img, err = inlineImage(p.PhotoURL)
		}
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		var prev *string
		if p.PhotoURL != nil || img != nil {
			current, err := svc.Get(r.Context(), id)
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			prev = current.PhotoURL
		}

		saved, err := writeImage(images, upload.KindProviderPhoto, id, img)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if saved != nil {
			p.PhotoURL = saved
		}

		updated, err := svc.Update(r.Context(), id, p)
		if err != nil {
			if saved != nil {
				_ = images.Remove(*saved)
			}
			writeServiceError(w, r, err)
			return
		}
		dropReplaced(r, images, prev, updated.PhotoURL)
		writeJSON(w, http.StatusOK, providerResponse{Message: "Provider updated successfully", Provider: updated})
	}
}

func adminDeleteProviderHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Provider deleted successfully", ID: id})
	}
}

func listWindowsHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		windows, err := svc.Windows(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"availability": windows})
	}
}

func adminCreateWindowHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var in provider.WindowInput
		if !decodeJSON(w, r, &in) {
			return
		}
		win, err := svc.CreateWindow(r.Context(), id, in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, windowResponse{Message: "Availability created", Availability: win})
	}
}

func adminUpdateWindowHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		id, ok := pathID(w, r, "availabilityId")
		if !ok {
			return
		}
		var p provider.WindowPatch
		if !decodeJSON(w, r, &p) {
			return
		}
		win, err := svc.UpdateWindow(r.Context(), providerID, id, p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, windowResponse{Message: "Availability updated", Availability: win})
	}
}

func adminDeleteWindowHandler(svc ProviderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		providerID, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		id, ok := pathID(w, r, "availabilityId")
		if !ok {
			return
		}
		if err := svc.DeleteWindow(r.Context(), providerID, id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Availability deleted", ID: id})
	}
}

func listFacilitiesHandler(svc FacilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facilities, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"facilities": facilities})
	}
}

func patientFacilitiesHandler(svc FacilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		facilities, err := svc.ListForPatient(r.Context(), identity(r).ID)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"facilities": facilities})
	}
}

func getFacilityHandler(svc FacilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		f, err := svc.Get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, facilityResponse{Facility: f})
	}
}

func adminCreateFacilityHandler(svc FacilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in facility.Input
		if !decodeJSON(w, r, &in) {
			return
		}
		f, err := svc.Create(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, facilityResponse{Message: "Facility created successfully", Facility: f})
	}
}

func adminUpdateFacilityHandler(svc FacilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var p facility.Patch
		if !decodeJSON(w, r, &p) {
			return
		}
		f, err := svc.Update(r.Context(), id, p)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, facilityResponse{Message: "Facility updated successfully", Facility: f})
	}
}

func adminDeleteFacilityHandler(svc FacilityService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Facility deleted successfully", ID: id})
	}
}
