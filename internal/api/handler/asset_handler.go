package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/workhive/marketplace-api/internal/core/ports"
)

// AssetHandler hands out signed object-store URLs.
type AssetHandler struct {
	assets ports.AssetService
}

func NewAssetHandler(assets ports.AssetService) *AssetHandler {
	return &AssetHandler{assets: assets}
}

// UploadURL handles POST /uploads/url. The key is scoped to the caller.
//
// @Summary      Signed upload URL
// @Tags         uploads
// @Accept       json
// @Produce      json
// @Param        body  body      uploadURLRequest  true  "Asset kind and content type"
// @Success      200   {object}  envelope{data=signedURLData}
// @Failure      403   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /uploads/url [post]
func (h *AssetHandler) UploadURL(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req uploadURLRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	u, err := h.assets.UploadURL(c.Request().Context(), claims.ID, req.Kind, req.ContentType)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Upload URL", toSignedURLData(u))
}

// RetrievalURL handles GET /uploads/url?key=.
//
// @Summary      Signed download URL
// @Tags         uploads
// @Produce      json
// @Param        key  query     string  true  "Object key"
// @Success      200  {object}  envelope{data=signedURLData}
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /uploads/url [get]
func (h *AssetHandler) RetrievalURL(c echo.Context) error {
	claims, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var q retrievalURLQuery
	if err := bind(c, &q); err != nil {
		return err
	}

	u, err := h.assets.RetrievalURL(c.Request().Context(), *claims, q.Key)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Retrieval URL", toSignedURLData(u))
}
