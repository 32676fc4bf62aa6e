package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"medicase/internal/http/middleware"
	"medicase/internal/model"
	"medicase/internal/service"
)

// parsePage reads limit/offset query parameters with the standard defaults.
func parsePage(c *fiber.Ctx) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return 0, 0, errors.New("invalid limit")
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return 0, 0, errors.New("invalid offset")
	}
	return limit, offset, nil
}

// UploadDocument accepts a multipart upload (field name: file) with document
// metadata in the remaining form fields.
func UploadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		actor := middleware.ActorFromCtx(c)
		patientID := c.FormValue("patient_id")
		if patientID == "" {
			// patients default to their own record
			patientID = actor.ID
		}

		doc, err := svc.Upload(c.UserContext(), actor, f, service.UploadRequest{
			PatientID:   patientID,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Category:    c.FormValue("category"),
			Description: c.FormValue("description"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(doc)
	}
}

// ListDocumentTypes enumerates the known document categories so upload forms
// can offer them.
func ListDocumentTypes() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"data": model.DocumentCategories()})
	}
}

// ListPatientDocuments returns a patient's documents, narrowed by ?category=
// and ?q= search, paginated with limit/offset.
func ListPatientDocuments(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := parsePage(c)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", err.Error())
		}
		res, err := svc.ListByPatient(c.UserContext(), middleware.ActorFromCtx(c), c.Params("patientId"), service.ListQuery{
			Category: c.Query("category"),
			Search:   c.Query("q"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetDocument returns a single document's metadata.
func GetDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.Get(c.UserContext(), middleware.ActorFromCtx(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DownloadDocument streams the document content with its stored content type
// and original filename.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc, doc, err := svc.Download(c.UserContext(), middleware.ActorFromCtx(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Set(fiber.HeaderContentType, doc.ContentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+doc.Filename+`"`)
		return c.SendStream(rc, int(doc.Size))
	}
}

// UpdateDocument mutates document metadata.
func UpdateDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.UpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "malformed request body")
		}
		doc, err := svc.Update(c.UserContext(), middleware.ActorFromCtx(c), c.Params("id"), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// ToggleDocumentVisibility flips the public flag.
func ToggleDocumentVisibility(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		doc, err := svc.ToggleVisibility(c.UserContext(), middleware.ActorFromCtx(c), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(doc)
	}
}

// DeleteDocument removes the document and its stored content.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), middleware.ActorFromCtx(c), c.Params("id")); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
