package handlers

import (
	"mime/multipart"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/filevault/internal/dto"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/identity"
	"github.com/ahmetcoskunkizilkaya/filevault/internal/services"
	"github.com/gofiber/fiber/v2"
)

type FileHandler struct {
	fileService *services.FileService
}

func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func (h *FileHandler) Upload(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.ErrUnauthorized)
	}

	header, err := formFile(c)
	if err != nil {
		return respondError(c, err)
	}

	file, err := h.fileService.Upload(c.UserContext(), userID, header)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

func (h *FileHandler) List(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.ErrUnauthorized)
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", services.DefaultPageSize)

	resp, err := h.fileService.List(c.UserContext(), userID, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (h *FileHandler) Get(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.ErrUnauthorized)
	}

	file, err := h.fileService.Get(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(file)
}

func (h *FileHandler) Download(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.ErrUnauthorized)
	}

	file, body, err := h.fileService.Open(c.UserContext(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.MimeType)
	// fasthttp closes the stream once the response is written.
	return c.SendStream(body, int(file.Size))
}

func (h *FileHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.ErrUnauthorized)
	}

	header, err := formFile(c)
	if err != nil {
		return respondError(c, err)
	}

	file, err := h.fileService.Update(c.UserContext(), userID, c.Params("id"), header)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(file)
}

func (h *FileHandler) Delete(c *fiber.Ctx) error {
	userID, err := identity.GetUserID(c)
	if err != nil {
		return respondError(c, fiber.ErrUnauthorized)
	}

	if err := h.fileService.Delete(c.UserContext(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Message: "File deleted successfully"})
}

// formFile returns the "file" part of a multipart body, or
// services.ErrNoFileUploaded when the request has none.
func formFile(c *fiber.Ctx) (*multipart.FileHeader, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, services.ErrNoFileUploaded
	}
	return header, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
