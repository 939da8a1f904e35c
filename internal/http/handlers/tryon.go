package handlers

import (
	"context"
	"io"
	"net/http"

	"fitroom/internal/domain"
)

// Uploads beyond this size are rejected before the pipeline sees them.
const maxUploadBytes = 32 << 20

// TryOnDescribe handles person image + free-text clothing description.
func (a *App) TryOnDescribe(w http.ResponseWriter, r *http.Request) {
	person, err := a.formImage(r, "person_image")
	if err != nil {
		a.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.GenerateTimeout)
	defer cancel()

	result, err := a.Service.TryOnWithDescription(ctx, person, r.FormValue("clothing_description"))
	if err != nil {
		a.failure(w, r, err)
		return
	}
	a.image(w, result)
}

// TryOnImage handles person image + clothing reference image.
func (a *App) TryOnImage(w http.ResponseWriter, r *http.Request) {
	person, err := a.formImage(r, "person_image")
	if err != nil {
		a.failure(w, r, err)
		return
	}
	clothing, err := a.formImage(r, "clothing_image")
	if err != nil {
		a.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.GenerateTimeout)
	defer cancel()

	result, err := a.Service.TryOnWithImage(ctx, person, clothing, r.FormValue("clothing_description"))
	if err != nil {
		a.failure(w, r, err)
		return
	}
	a.image(w, result)
}

// TryOnURL handles person image + product page URL. The flow includes page
// extraction, so it runs under the longer URL-flow timeout.
func (a *App) TryOnURL(w http.ResponseWriter, r *http.Request) {
	person, err := a.formImage(r, "person_image")
	if err != nil {
		a.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.URLFlowTimeout)
	defer cancel()

	result, err := a.Service.TryOnFromURL(ctx, person, r.FormValue("product_url"), r.FormValue("clothing_description"))
	if err != nil {
		a.failure(w, r, err)
		return
	}
	a.image(w, result)
}

// TryOnBackground handles background replacement with an optional camera angle.
func (a *App) TryOnBackground(w http.ResponseWriter, r *http.Request) {
	person, err := a.formImage(r, "person_image")
	if err != nil {
		a.failure(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.Cfg.GenerateTimeout)
	defer cancel()

	result, err := a.Service.ChangeBackground(ctx, person, r.FormValue("background_description"), r.FormValue("camera_angle"))
	if err != nil {
		a.failure(w, r, err)
		return
	}
	a.image(w, result)
}

// formImage pulls an uploaded image out of the multipart form.
func (a *App) formImage(r *http.Request, field string) (domain.ImageAsset, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return domain.ImageAsset{}, domain.Wrap(domain.KindValidation, "request must be multipart/form-data", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return domain.ImageAsset{}, domain.Failf(domain.KindValidation, "%s is required", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return domain.ImageAsset{}, domain.Wrap(domain.KindValidation, "could not read uploaded file", err)
	}
	if len(data) == 0 {
		return domain.ImageAsset{}, domain.Failf(domain.KindValidation, "%s is empty", field)
	}

	return domain.ImageAsset{
		Data:     data,
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}
