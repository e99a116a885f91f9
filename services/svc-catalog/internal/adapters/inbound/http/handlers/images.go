package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/commands"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

const (
	imageFormField = "file"

	// Room for the multipart envelope around the largest accepted image.
	multipartOverhead = 64 << 10
)

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	images, err := h.app.Queries.ListImages.Execute(r.Context(), queries.ListImagesQuery{ProductID: productID})
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.respond(w, r, http.StatusOK, mapSlice(images, toImageResponse))
}

// UploadImage reads the "file" part of a multipart form. The part is
// buffered up to one byte over the size limit so the object store gets
// an exact length and oversized uploads fail validation.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, model.MaxImageSize+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, codeMissingFilePart, msgMissingFilePart)

		return
	}

	for {
		part, err := reader.NextPart()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				middleware.WriteError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, msgPayloadTooLarge)

				return
			}

			middleware.WriteError(w, http.StatusBadRequest, codeMissingFilePart, msgMissingFilePart)

			return
		}

		if part.FormName() != imageFormField {
			_ = part.Close()

			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, model.MaxImageSize+1))
		_ = part.Close()

		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				middleware.WriteError(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge, msgPayloadTooLarge)

				return
			}

			h.writeError(w, r, err)

			return
		}

		image, err := h.app.Commands.UploadImage.Handle(r.Context(), commands.UploadImageCommand{
			ProductID:   productID,
			ContentType: partContentType(part.Header.Get("Content-Type"), data),
			Size:        int64(len(data)),
			Body:        bytes.NewReader(data),
		})
		if err != nil {
			h.writeError(w, r, err)

			return
		}

		h.created(w, r, "/products/"+productID.String()+"/images/"+image.ID.String(), toImageResponse(image))

		return
	}
}

func partContentType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}

	return http.DetectContentType(data)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	productID, err := productIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	id, err := imageIDParam(r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	if _, err := h.app.Commands.DeleteImage.Handle(r.Context(), commands.DeleteImageCommand{ProductID: productID, ID: id}); err != nil {
		h.writeError(w, r, err)

		return
	}

	noContent(w)
}
